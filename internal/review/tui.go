package review

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okempf/jobscout/internal/llm"
	"github.com/okempf/jobscout/internal/model"
)

// Lines per posting in the list view (title + subtitle + blank separator).
const postingItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	postingTitleStyle = lipgloss.NewStyle().
				Bold(true)

	postingSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	descDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	descHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Analyzer produces a CV-vs-posting fit analysis on demand. Nil disables
// the 'a' key in the detail view.
type Analyzer interface {
	Analyze(ctx context.Context, job model.JobPosting) (*llm.MatchAnalysis, error)
}

// analysisDoneMsg is sent when an async fit analysis completes.
type analysisDoneMsg struct {
	jobID    int64
	analysis *llm.MatchAnalysis
	err      error
}

type reviewModel struct {
	allPostings   []model.JobPosting
	strongMatches []model.JobPosting
	minScore      float64
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=left, 1=right
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	// Detail view state
	view            viewState
	detailPosting   model.JobPosting
	detailViewport  viewport.Model
	showDescription bool

	// Fit analysis state
	analyzer       Analyzer
	analyses       map[int64]*llm.MatchAnalysis
	analyzeLoading bool
	analyzeError   string

	wantQuit bool
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case analysisDoneMsg:
		m.analyzeLoading = false
		if msg.err != nil {
			m.analyzeError = fmt.Sprintf("analysis failed: %v", msg.err)
		} else {
			m.analyzeError = ""
			m.analyses[msg.jobID] = msg.analysis
		}
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.wantQuit = true
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if m.detailPosting.URL != "" {
			openURL(m.detailPosting.URL)
		}
		return m, nil
	case "r":
		if m.detailPosting.Description != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	case "a":
		if m.analyzer != nil && !m.analyzeLoading && m.analyses[m.detailPosting.ID] == nil {
			m.analyzeLoading = true
			m.analyzeError = ""
			m.detailViewport.SetContent(m.renderDetail())
			return m, m.analyzeCmd(m.detailPosting)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) analyzeCmd(posting model.JobPosting) tea.Cmd {
	analyzer := m.analyzer
	return func() tea.Msg {
		analysis, err := analyzer.Analyze(context.Background(), posting)
		return analysisDoneMsg{jobID: posting.ID, analysis: analysis, err: err}
	}
}

func (m *reviewModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.allPostings)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.strongMatches)-1, 0))
	}
}

func (m *reviewModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == 0 {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * postingItemHeight
	cursorBottom := cursorTop + postingItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	postings := m.activePostings()
	cursor := m.activeCursor()
	if len(postings) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detailPosting = postings[cursor]
	m.showDescription = false
	m.analyzeError = ""
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *reviewModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.leftViewport.SetContent(renderPostings(m.allPostings, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderPostings(m.strongMatches, m.rightCursor, m.activePane == 1))
}

func (m reviewModel) activePostings() []model.JobPosting {
	if m.activePane == 0 {
		return m.allPostings
	}
	return m.strongMatches
}

func (m reviewModel) activeCursor() int {
	if m.activePane == 0 {
		return m.leftCursor
	}
	return m.rightCursor
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	return m.viewList()
}

func (m reviewModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" All Jobs (%d)", len(m.allPostings))
	rightHeader := fmt.Sprintf(" Strong Matches ≥%.0f (%d)", m.minScore, len(m.strongMatches))

	var leftHeaderRendered, rightHeaderRendered string
	var leftBorder, rightBorder lipgloss.Style

	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		rightHeaderRendered = inactiveHeaderStyle.Render(rightHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
		rightBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		leftHeaderRendered = inactiveHeaderStyle.Render(leftHeader)
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		leftBorder = inactiveBorderStyle.Width(paneWidth)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	leftPane := leftBorder.Render(m.leftViewport.View())
	rightPane := rightBorder.Render(m.rightViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	unscored := 0
	for _, p := range m.allPostings {
		if p.MatchScore == nil {
			unscored++
		}
	}
	statusText := fmt.Sprintf(" %d stored | %d strong | %d unscored    ←/→/Tab switch  ↑/↓ cursor  Enter detail  q quit",
		len(m.allPostings), len(m.strongMatches), unscored)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	if m.analyzeLoading {
		title += "  (analyzing...)"
	}

	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusText := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if m.detailPosting.Description != "" {
		if m.analyzer != nil && m.analyses[m.detailPosting.ID] == nil && !m.analyzeLoading {
			statusText = " o open URL  r desc  a analyze fit  esc/backspace back  ↑/↓ scroll  q quit"
		} else {
			statusText = " o open URL  r desc  esc/backspace back  ↑/↓ scroll  q quit"
		}
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	p := m.detailPosting
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", p.Title)
	addField("Company", p.Company)
	addField("Location", p.Location)
	addField("Source", p.Source)
	addField("External ID", p.ExternalID)

	b.WriteByte('\n')

	if !p.PostedDate.IsZero() {
		addField("Posted", p.PostedDate.Format("2006-01-02"))
	}
	if p.Deadline != nil {
		addField("Deadline", p.Deadline.Format("2006-01-02"))
	}
	addField("Job Type", p.JobType)
	addField("Experience", p.ExperienceLevel)
	addField("Salary", p.SalaryRange)
	if p.RemoteOption {
		addField("Remote", "yes")
	}
	if len(p.SkillsRequired) > 0 {
		addField("Skills", strings.Join(p.SkillsRequired, ", "))
	}
	if p.MatchScore != nil {
		addField("Match Score", fmt.Sprintf("%.0f/100", *p.MatchScore))
	}

	b.WriteByte('\n')
	addField("URL", p.URL)

	if m.analyzeError != "" {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("⚠ "+m.analyzeError) + "\n")
	}

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return descDividerStyle.Render(label + fill)
	}

	if analysis := m.analyses[p.ID]; analysis != nil {
		b.WriteByte('\n')
		b.WriteString(divider("── Fit Analysis ") + "\n\n")
		addField("Fit Score", fmt.Sprintf("%.0f/100", analysis.MatchScore))
		if len(analysis.MatchingSkills) > 0 {
			addField("Matching", strings.Join(analysis.MatchingSkills, ", "))
		}
		if len(analysis.MissingSkills) > 0 {
			addField("Missing", strings.Join(analysis.MissingSkills, ", "))
		}
		b.WriteByte('\n')
		for _, s := range analysis.Strengths {
			if s != "" {
				b.WriteString(detailValueStyle.Render("  + "+s) + "\n")
			}
		}
		for _, s := range analysis.Improvements {
			if s != "" {
				b.WriteString(detailValueStyle.Render("  - "+s) + "\n")
			}
		}
	} else if m.analyzeLoading {
		b.WriteByte('\n')
		b.WriteString(descHintStyle.Render("  analyzing fit against your CV...") + "\n")
	} else if m.analyzer != nil && m.analyzeError == "" {
		b.WriteByte('\n')
		b.WriteString(descHintStyle.Render("  press a for a CV fit analysis") + "\n")
	}

	if p.Description != "" {
		b.WriteByte('\n')
		if m.showDescription {
			b.WriteString(divider("── Description ") + "\n\n")
			b.WriteString(descBodyStyle.Render(wordWrap(p.Description, wrapWidth)) + "\n")
		} else {
			b.WriteString(descHintStyle.Render("  press r to read the description") + "\n")
		}
	}

	return b.String()
}

func renderPostings(postings []model.JobPosting, cursor int, isActive bool) string {
	if len(postings) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, p := range postings {
		isSelected := isActive && i == cursor

		titleSt := postingTitleStyle
		subtitleSt := postingSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("%s — %s", p.Company, p.Title)))
		b.WriteByte('\n')

		score := "unscored"
		if p.MatchScore != nil {
			score = fmt.Sprintf("%.0f/100", *p.MatchScore)
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", p.Location, p.PostedDate.Format("2006-01-02"), score)))
		b.WriteByte('\n')

		if i < len(postings)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sortByScore(postings []model.JobPosting) {
	sort.SliceStable(postings, func(i, j int) bool {
		si, sj := 0.0, 0.0
		if postings[i].MatchScore != nil {
			si = *postings[i].MatchScore
		}
		if postings[j].MatchScore != nil {
			sj = *postings[j].MatchScore
		}
		if si != sj {
			return si > sj
		}
		return postings[i].PostedDate.After(postings[j].PostedDate)
	})
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the split-pane review TUI over stored postings. Postings
// scoring at least minScore appear in the right pane; both panes sort by
// score, then recency. analyzer may be nil.
func Run(postings []model.JobPosting, minScore float64, analyzer Analyzer) error {
	sortByScore(postings)

	var strong []model.JobPosting
	for _, p := range postings {
		if p.MatchScore != nil && *p.MatchScore >= minScore {
			strong = append(strong, p)
		}
	}

	m := reviewModel{
		allPostings:   postings,
		strongMatches: strong,
		minScore:      minScore,
		analyzer:      analyzer,
		analyses:      make(map[int64]*llm.MatchAnalysis),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
