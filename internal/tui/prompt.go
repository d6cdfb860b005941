// Package tui implements the interactive roll prompt as a terminal form.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
)

const (
	focusEdges = iota
	focusBanes
	focusSkills
)

// skillItem wraps a skill choice for the list display.
type skillItem struct {
	choice powerroll.SkillChoice
}

func (i skillItem) Title() string       { return i.choice.Label }
func (i skillItem) Description() string { return i.choice.ID }
func (i skillItem) FilterValue() string { return i.choice.Label }

// Model is the roll prompt form state.
type Model struct {
	rollType  powerroll.Type
	edges     int
	banes     int
	skillList list.Model
	hasSkills bool
	skillID   string

	focus     int
	confirmed bool
	canceled  bool
	width     int
	height    int
}

// NewModel builds the prompt form from the requested defaults.
func NewModel(form powerroll.PromptForm) Model {
	model := Model{
		rollType: form.Type,
		edges:    clampBoon(form.Edges),
		banes:    clampBoon(form.Banes),
	}

	if len(form.Skills) > 0 {
		delegate := list.NewDefaultDelegate()
		delegate.SetHeight(2)
		delegate.SetSpacing(0)
		items := make([]list.Item, len(form.Skills))
		for i, choice := range form.Skills {
			items[i] = skillItem{choice: choice}
		}
		skillList := list.New(items, delegate, 40, 12)
		skillList.Title = "Skill"
		skillList.SetShowStatusBar(false)
		skillList.SetFilteringEnabled(false)
		model.skillList = skillList
		model.hasSkills = true
	}

	return model
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.hasSkills {
			listHeight := msg.Height - 10
			if listHeight < 5 {
				listHeight = 5
			}
			m.skillList.SetSize(msg.Width-4, listHeight)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "tab":
			m.focus = m.nextFocus(1)
			return m, nil
		case "shift+tab":
			m.focus = m.nextFocus(-1)
			return m, nil
		case "left":
			m.adjust(-1)
			return m, nil
		case "right":
			m.adjust(1)
			return m, nil
		case " ":
			if m.focus == focusSkills {
				m.toggleSkill()
				return m, nil
			}
		}
	}

	if m.hasSkills && m.focus == focusSkills {
		var cmd tea.Cmd
		m.skillList, cmd = m.skillList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) nextFocus(step int) int {
	fields := 2
	if m.hasSkills {
		fields = 3
	}
	return ((m.focus+step)%fields + fields) % fields
}

func (m *Model) adjust(delta int) {
	switch m.focus {
	case focusEdges:
		m.edges = clampBoon(m.edges + delta)
	case focusBanes:
		m.banes = clampBoon(m.banes + delta)
	}
}

func (m *Model) toggleSkill() {
	item, ok := m.skillList.SelectedItem().(skillItem)
	if !ok {
		return
	}
	if m.skillID == item.choice.ID {
		m.skillID = ""
		return
	}
	m.skillID = item.choice.ID
}

// View implements tea.Model.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4D96FF")).
		MarginBottom(1)
	focusedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFD479"))
	fieldStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CCCCCC"))
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1)

	header := titleStyle.Render(fmt.Sprintf("POWER ROLL · %s", m.rollType))

	edgesLine := fmt.Sprintf("Edges  ◂ %d ▸", m.edges)
	banesLine := fmt.Sprintf("Banes  ◂ %d ▸", m.banes)
	if m.focus == focusEdges {
		edgesLine = focusedStyle.Render(edgesLine)
	} else {
		edgesLine = fieldStyle.Render(edgesLine)
	}
	if m.focus == focusBanes {
		banesLine = focusedStyle.Render(banesLine)
	} else {
		banesLine = fieldStyle.Render(banesLine)
	}

	body := fmt.Sprintf("%s\n%s", edgesLine, banesLine)
	if m.hasSkills {
		selected := "none"
		if m.skillID != "" {
			selected = m.skillID
		}
		body = fmt.Sprintf("%s\n\n%s\nSelected skill: %s", body, m.skillList.View(), selected)
	}

	help := helpStyle.Render("tab: next field · ◂ ▸: adjust · space: pick skill · enter: roll · esc: cancel")
	return fmt.Sprintf("%s\n%s\n%s", header, body, help)
}

// Values returns the confirmed form values, or ErrPromptCanceled when the
// form was dismissed.
func (m Model) Values() (powerroll.PromptValues, error) {
	if m.canceled || !m.confirmed {
		return powerroll.PromptValues{}, powerroll.ErrPromptCanceled
	}
	return powerroll.PromptValues{
		Edges:   m.edges,
		Banes:   m.banes,
		SkillID: m.skillID,
	}, nil
}

func clampBoon(value int) int {
	if value < 0 {
		return 0
	}
	if value > powerroll.MaxEdges {
		return powerroll.MaxEdges
	}
	return value
}

// Prompter runs the prompt form in a terminal program. It satisfies the
// roll workflow's prompting contract.
type Prompter struct {
	// ProgramOptions are appended to the bubbletea program, mainly for
	// tests to redirect input and output.
	ProgramOptions []tea.ProgramOption
}

// PromptRoll implements powerroll.Prompter.
func (p *Prompter) PromptRoll(ctx context.Context, form powerroll.PromptForm) (powerroll.PromptValues, error) {
	options := append([]tea.ProgramOption{tea.WithContext(ctx)}, p.ProgramOptions...)
	program := tea.NewProgram(NewModel(form), options...)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return powerroll.PromptValues{}, powerroll.ErrPromptCanceled
		}
		return powerroll.PromptValues{}, fmt.Errorf("run roll prompt: %w", err)
	}

	model, ok := final.(Model)
	if !ok {
		return powerroll.PromptValues{}, fmt.Errorf("unexpected prompt model %T", final)
	}
	return model.Values()
}

var _ powerroll.Prompter = (*Prompter)(nil)
