package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	"github.com/matzehuels/sdfexpand/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailStyle       = lipgloss.NewStyle().PaddingLeft(3)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "explore <graph>",
		Short: "Browse the HSDF firings of an SDF graph interactively",
		Long: `Expand an SDF graph and browse its firings in the terminal. The panel on
the right lists the tokens each firing consumes and produces, grouped by
peer firing and delay.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the analysis cache")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, path string, noCache bool) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return errs.New(errs.ErrCodeUnsupported, "explore needs an interactive terminal; use expand for scripted output")
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, pipeline.Options{Path: path, Expand: true, Refresh: noCache})
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(NewFiringListModel(result.HSDF, result.Channels), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// FiringListModel - Interactive firing browser
// =============================================================================

// FiringListModel is the bubbletea model for browsing HSDF firings.
type FiringListModel struct {
	Firings []hsdf.Actor
	Inputs  map[hsdf.Actor][]hsdf.Edge
	Outputs map[hsdf.Actor][]hsdf.Edge
	Cursor  int
	Height  int
	Offset  int
}

// NewFiringListModel indexes channels by the firings at either end.
func NewFiringListModel(h *hsdf.Graph, channels []hsdf.Channel) FiringListModel {
	m := FiringListModel{
		Firings: slices.Collect(h.Actors()),
		Inputs:  make(map[hsdf.Actor][]hsdf.Edge),
		Outputs: make(map[hsdf.Actor][]hsdf.Edge),
		Height:  15,
	}
	for _, e := range hsdf.Aggregate(slices.Values(channels)) {
		m.Outputs[e.Source] = append(m.Outputs[e.Source], e)
		m.Inputs[e.Target] = append(m.Inputs[e.Target], e)
	}
	return m
}

func (m FiringListModel) Init() tea.Cmd {
	return nil
}

func (m FiringListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Firings))
		case "end", "G":
			m.move(len(m.Firings))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the list, and scrolls it into view.
func (m *FiringListModel) move(delta int) {
	if len(m.Firings) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Firings)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m FiringListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("HSDF Firings"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  q quit"))
	b.WriteString("\n\n")

	if len(m.Firings) == 0 {
		b.WriteString(listDimStyle.Render("  no firings"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Firings))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		a := m.Firings[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, a.Label(), tokenCount(m.Inputs[a]), tokenCount(m.Outputs[a])})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Firing", "In", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, t.Render(), detailStyle.Render(m.detail())))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Firings))))

	return b.String()
}

// detail lists the edges into and out of the selected firing.
func (m FiringListModel) detail() string {
	a := m.Firings[m.Cursor]
	var b strings.Builder
	b.WriteString(StyleTitle.Render(a.Label()))
	b.WriteString("\n\n")
	writeEdges(&b, "Consumes", m.Inputs[a], func(e hsdf.Edge) hsdf.Actor { return e.Source })
	b.WriteString("\n")
	writeEdges(&b, "Produces", m.Outputs[a], func(e hsdf.Edge) hsdf.Actor { return e.Target })
	return b.String()
}

func writeEdges(b *strings.Builder, title string, edges []hsdf.Edge, peer func(hsdf.Edge) hsdf.Actor) {
	b.WriteString(listDimStyle.Render(title))
	b.WriteString("\n")
	if len(edges) == 0 {
		b.WriteString(listDimStyle.Render("  none"))
		b.WriteString("\n")
		return
	}
	for _, e := range edges {
		line := fmt.Sprintf("  %s %s ×%d", iconArrow, peer(e).Label(), e.Tokens)
		if e.Delay > 0 {
			line += StyleWarning.Render(fmt.Sprintf("  delay %d", e.Delay))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func tokenCount(edges []hsdf.Edge) string {
	n := 0
	for _, e := range edges {
		n += e.Tokens
	}
	return strconv.Itoa(n)
}
