package review

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okempf/jobscout/internal/model"
)

// Skills shown in a picker row before the list is elided.
const pickerSkillPreview = 4

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerRowStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerRowMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerSelectedMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	cvs    []model.CV
	cursor int
	chosen int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.cvs)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

// cvMeta is the second row of a picker entry: language, skill count, and a
// preview of the declared skills the fit analysis will score against.
func cvMeta(cv model.CV) string {
	parts := []string{cv.Language}
	if cv.Language == "" {
		parts = []string{"English"}
	}
	parts = append(parts, fmt.Sprintf("%d skills", len(cv.Skills)))
	if len(cv.Skills) > 0 {
		preview := cv.Skills
		elided := ""
		if len(preview) > pickerSkillPreview {
			preview = preview[:pickerSkillPreview]
			elided = ", …"
		}
		parts = append(parts, strings.Join(preview, ", ")+elided)
	}
	return strings.Join(parts, " · ")
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render(fmt.Sprintf("Select a CV to score against (%d available)", len(m.cvs)))
	s += "\n"

	for i, cv := range m.cvs {
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+cv.Title) + "\n"
			s += pickerSelectedMetaStyle.Render("  "+cvMeta(cv)) + "\n"
		} else {
			s += pickerRowStyle.Render(cv.Title) + "\n"
			s += pickerRowMetaStyle.Render(cvMeta(cv)) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// RunCVPicker shows an interactive CV selector.
// Returns the index of the chosen CV, or a negative value if the user quit.
func RunCVPicker(cvs []model.CV) (int, error) {
	m := pickerModel{
		cvs:    cvs,
		chosen: -1,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return -1, err
	}

	final := result.(pickerModel)
	return final.chosen, nil
}
