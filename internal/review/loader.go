package review

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okempf/jobscout/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	loaderSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	loaderQueryStyle   = lipgloss.NewStyle().Bold(true)
	loaderMetaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type searchDoneMsg struct {
	postings []model.JobPosting
	err      error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	query    string
	searchFn func(ctx context.Context) ([]model.JobPosting, error)
	started  time.Time
	frame    int
	result   []model.JobPosting
	err      error
	done     bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doSearch(), m.tick())
}

func (m loaderModel) doSearch() tea.Cmd {
	searchFn := m.searchFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		postings, err := searchFn(ctx)
		return searchDoneMsg{postings: postings, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		m.result = msg.postings
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("cancelled")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := loaderSpinnerStyle.Render(spinnerFrames[m.frame])
	elapsed := time.Since(m.started).Round(time.Second)
	return fmt.Sprintf("%s Searching job boards for %s %s\n",
		spinner,
		loaderQueryStyle.Render(fmt.Sprintf("%q", m.query)),
		loaderMetaStyle.Render(fmt.Sprintf("· %s · ctrl+c to cancel", elapsed)),
	)
}

// RunLoader shows a spinner with an elapsed-time readout while a search
// runs. Renders inline (no alt screen) so prior terminal output stays
// visible.
func RunLoader(query string, searchFn func(ctx context.Context) ([]model.JobPosting, error)) ([]model.JobPosting, error) {
	m := loaderModel{
		query:    query,
		searchFn: searchFn,
		started:  time.Now(),
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
