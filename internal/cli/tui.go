package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in an interactive terminal UI",
		Long: `Browse the catalog in the terminal.

Keys: ↑/↓ select, enter open, esc back, t toggle theme, q quit.
Theme changes are stored like "eveshow theme toggle".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := c.catalog(ctx)
			if err != nil {
				return err
			}
			pref, err := c.preference(ctx)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewBrowseModel(ctx, cat, pref), tea.WithAltScreen(), tea.WithContext(ctx))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(BrowseModel); ok && m.Err != nil {
				return m.Err
			}
			return nil
		},
	}
}

// =============================================================================
// BrowseModel - Interactive catalog browser
// =============================================================================

// themeChangedMsg reports the result of a persisted theme toggle.
type themeChangedMsg struct {
	theme theme.Theme
	err   error
}

// BrowseModel is the bubbletea model for the catalog browser. It shows the
// capability list, or the glamour-rendered detail of one capability.
type BrowseModel struct {
	Caps   []*content.Capability
	Cursor int
	Offset int
	Height int
	Width  int
	Theme  theme.Theme
	Err    error

	ctx  context.Context
	pref *theme.Preference

	open   bool   // detail pane visible
	detail string // rendered detail of Caps[Cursor]
	vp     viewport.Model
	status string
}

// NewBrowseModel creates a browser over cat starting in pref's theme.
func NewBrowseModel(ctx context.Context, cat *content.Catalog, pref *theme.Preference) BrowseModel {
	return BrowseModel{
		Caps:   cat.All(),
		Height: 15,
		Width:  80,
		Theme:  pref.Current(),
		ctx:    ctx,
		pref:   pref,
		vp:     viewport.New(80, 15),
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = max(msg.Height-6, 5)
		m.vp.Width = m.Width
		m.vp.Height = m.Height
		if m.open {
			m = m.renderDetail()
		}
	case themeChangedMsg:
		if msg.err != nil {
			m.status = "theme not saved: " + msg.err.Error()
			return m, nil
		}
		m.Theme = msg.theme
		m.status = StyleSuccess.Render("theme: " + msg.theme.String())
		if m.open {
			m = m.renderDetail()
		}
	}
	return m, nil
}

func (m BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "t":
		return m, m.toggleTheme()
	}

	if m.open {
		switch msg.String() {
		case "esc", "left", "h", "backspace":
			m.open = false
			m.detail = ""
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
		}
	case "down", "j":
		if m.Cursor < len(m.Caps)-1 {
			m.Cursor++
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case "enter", "right", "l":
		if len(m.Caps) > 0 {
			m.open = true
			m = m.renderDetail()
			m.vp.GotoTop()
		}
	}
	return m, nil
}

// toggleTheme persists the flipped theme off the update loop.
func (m BrowseModel) toggleTheme() tea.Cmd {
	ctx, pref := m.ctx, m.pref
	return func() tea.Msg {
		t, err := pref.Toggle(ctx)
		return themeChangedMsg{theme: t, err: err}
	}
}

// renderDetail renders the selected capability for the current theme and
// width.
func (m BrowseModel) renderDetail() BrowseModel {
	md := capabilityMarkdown(m.Caps[m.Cursor])
	out := md
	if r, err := newMarkdownRenderer(m.Theme, m.Width-4); err == nil {
		if rendered, err := r.Render(md); err == nil {
			out = rendered
		}
	}
	m.detail = strings.TrimRight(out, "\n")
	m.vp.SetContent(m.detail)
	return m
}

func (m BrowseModel) View() string {
	if m.open {
		return m.detailView()
	}
	return m.listView()
}

func (m BrowseModel) header(title, keys string) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render("[" + m.Theme.String() + "]"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(keys))
	b.WriteString("\n\n")
	return b.String()
}

func (m BrowseModel) listView() string {
	var b strings.Builder
	b.WriteString(m.header("Eve Horizon Capabilities", "↑/↓ navigate  ⏎ open  t theme  q quit"))

	end := min(m.Offset+m.Height, len(m.Caps))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cp := m.Caps[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, cp.Title, cp.Subtitle})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Capability", "Subtitle").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				if col == 2 {
					return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
				}
				return listSelectedStyle
			}
			if col == 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Caps))))
	if m.status != "" {
		b.WriteString("  " + listDimStyle.Render(m.status))
	}
	return b.String()
}

func (m BrowseModel) detailView() string {
	var b strings.Builder
	b.WriteString(m.header(m.Caps[m.Cursor].Title, "↑/↓ scroll  esc back  t theme  q quit"))

	total := m.vp.TotalLineCount()
	b.WriteString(m.vp.View())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  lines %d-%d of %d", m.vp.YOffset+1, min(m.vp.YOffset+m.vp.Height, total), total)))
	if m.status != "" {
		b.WriteString("  " + listDimStyle.Render(m.status))
	}
	return b.String()
}
