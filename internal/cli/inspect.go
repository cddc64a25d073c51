package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/skilltree/pkg/io"
	"github.com/matzehuels/skilltree/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the interactive result browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "inspect [result.json]",
		Short: "Browse a build result interactively",
		Long: `Browse the categories of a build result, then the placed nodes of one
category. Pass a result file, or --run with an ID from 'history list'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res *pipeline.Result
			switch {
			case runID != "":
				st, err := c.newStore(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				run, err := st.Get(cmd.Context(), runID)
				if err != nil {
					return err
				}
				res = run.Result
			case len(args) == 1:
				var err error
				if res, err = pkgio.ImportResult(args[0]); err != nil {
					return fmt.Errorf("load result %s: %w", args[0], err)
				}
			default:
				return fmt.Errorf("pass a result file or --run")
			}
			if res == nil || len(res.Categories) == 0 {
				return fmt.Errorf("result has no categories")
			}
			_, err := tea.NewProgram(NewInspectModel(res), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "inspect a recorded run")
	return cmd
}

// =============================================================================
// InspectModel - category list and node drill-down
// =============================================================================

// InspectModel is the bubbletea model of the inspect command.
type InspectModel struct {
	Result   *pipeline.Result
	Names    []string
	Cursor   int
	Selected string // category being viewed, "" on the list
	Offset   int
	Height   int
}

// NewInspectModel creates a model positioned on the first category.
func NewInspectModel(res *pipeline.Result) InspectModel {
	return InspectModel{Result: res, Names: res.Names(), Height: 15}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

// rows returns the number of entries in the current view.
func (m InspectModel) rows() int {
	if m.Selected == "" {
		return len(m.Names)
	}
	return len(m.Result.Categories[m.Selected].Nodes)
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace", "left", "h":
			if m.Selected == "" {
				return m, tea.Quit
			}
			m.Cursor = indexOf(m.Names, m.Selected)
			m.Selected, m.Offset = "", 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.rows()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			if m.Selected == "" && len(m.Names) > 0 {
				m.Selected = m.Names[m.Cursor]
				m.Cursor, m.Offset = 0, 0
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m InspectModel) View() string {
	if m.Selected == "" {
		return m.listView()
	}
	return m.categoryView()
}

func (m InspectModel) listView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Categories"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	for i, name := range m.Names {
		cr := m.Result.Categories[name]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-20s %s  %s", cursor, name,
			statusStyle(cr.Status).Render(fmt.Sprintf("%-8s", cr.Status)),
			listDimStyle.Render(fmt.Sprintf("%d placed, %d unplaced", len(cr.Nodes), len(cr.Unplaced))))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m InspectModel) categoryView() string {
	cr := m.Result.Categories[m.Selected]
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Selected))
	b.WriteString(" ")
	b.WriteString(statusStyle(cr.Status).Render(string(cr.Status)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("edges %d · mean %.2f · max %.2f · crossings %d · zones %.2f",
		cr.Metrics.Edges, cr.Metrics.EdgeMean, cr.Metrics.EdgeMax, cr.Metrics.Crossings, cr.Metrics.ZoneAdherence)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ← back  q quit"))
	b.WriteString("\n\n")

	if cr.Error != "" {
		b.WriteString(StyleWarning.Render(cr.Error))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(cr.Nodes))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := cr.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		parent := n.ParentID
		if n.IsRoot {
			parent = "(root)"
		}
		rows = append(rows, []string{cursor, n.ID, n.Tier.String(), n.Theme, parent,
			fmt.Sprintf("%.1f, %.1f", n.X, n.Y)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Tier", "Theme", "Parent", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(cr.Nodes))))
	if len(cr.Unplaced) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("unplaced: " + strings.Join(cr.Unplaced, ", ")))
	}
	return b.String()
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return 0
}
