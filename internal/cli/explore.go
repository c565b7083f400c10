package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sptree/pkg/pipeline"
	"github.com/matzehuels/sptree/pkg/planar"
	"github.com/matzehuels/sptree/pkg/session"
)

// Explorer styles
var (
	exploreKeyStyle     = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	exploreRootStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorOrange)
	exploreStatusStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	exploreErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	exploreHeaderStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	exploreSelectStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreDimCellStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		src  sourceFlags
		save string
	)

	cmd := &cobra.Command{
		Use:   "explore [graph]",
		Short: "Pick roots and inspect depths interactively",
		Long: `Pick roots and inspect depths interactively.

Walk the graph one vertex at a time and see its depth from the primary root
and its difference against the secondary root. Every change of root rebuilds
the forests before the next frame is drawn.

Keys:
  ←/→ h/l     previous / next vertex id
  tab         next neighbor in angular order
  p           step to the tree parent (towards the primary root)
  0-9 ⏎       jump to a vertex id (esc cancels)
  ⏎           make the selected vertex the primary root
  s           make the selected vertex the secondary root
  c           clear the graph
  w           write the graph to --save
  q           quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := src.options(cmd, c.Config, args)
			if save == "" {
				save = opts.Input
			}
			if save == "" {
				save = defaultOutput("", "txt")
			}
			return c.runExplore(cmd.Context(), opts, src.noCache, save)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&save, "save", "", "file written by the w key (default: the input file)")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options, noCache bool, save string) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	// Keep logs off the alternate screen.
	c.SetLogLevel(LogWarn)
	m := newExploreModel(session.NewWithGraph(g, c.Logger), save)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// exploreModel - bubbletea model over one session
// =============================================================================

// exploreModel is the bubbletea model for the explore command.
type exploreModel struct {
	s        *session.Session
	g        *planar.Graph // snapshot, refreshed after structural changes
	selected int
	nbr      int             // index of the last neighbor visited with tab
	input    textinput.Model // vertex id being typed; focused while jumping
	save     string
	status   string
	err      error
}

func newExploreModel(s *session.Session, save string) exploreModel {
	in := textinput.New()
	in.Prompt = "go to "
	in.Placeholder = "vertex id"
	in.CharLimit = 10
	in.PromptStyle = StyleHighlight
	return exploreModel{s: s, g: s.Graph(), input: in, save: save}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.status, m.err = "", nil
	if m.input.Focused() {
		return m.updateJump(key)
	}
	n := m.g.Len()

	switch k := key.String(); k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		if n > 0 {
			m.selected = (m.selected - 1 + n) % n
			m.nbr = 0
		}
	case "right", "l":
		if n > 0 {
			m.selected = (m.selected + 1) % n
			m.nbr = 0
		}
	case "tab":
		if nbrs := m.g.Neighbors(m.selected); len(nbrs) > 0 {
			m.selected = nbrs[m.nbr%len(nbrs)]
			m.nbr++
		}
	case "p":
		if f, err := m.s.Primary(); err == nil && n > 0 {
			if parent := f.Parent(m.selected); parent >= 0 {
				m.selected = parent
			}
		}
	case "enter":
		if err := m.s.SetPrimaryRoot(m.selected); err != nil {
			m.err = err
		} else {
			m.status = fmt.Sprintf("primary root is now %d", m.selected)
		}
	case "s":
		if err := m.s.SetSecondaryRoot(m.selected); err != nil {
			m.err = err
		} else {
			m.status = fmt.Sprintf("secondary root is now %d", m.selected)
		}
	case "c":
		m.s.Reset()
		m.g = m.s.Graph()
		m.selected, m.nbr = 0, 0
		m.status = "graph cleared"
	case "w":
		if err := writeGraph(m.s.Graph(), m.save); err != nil {
			m.err = err
		} else {
			m.status = fmt.Sprintf("wrote %d vertices to %s", m.s.Len(), m.save)
		}
	default:
		if key.Type == tea.KeyRunes && isDigits(k) {
			m.input.SetValue(k)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	}
	return m, nil
}

// updateJump handles keys while a vertex id is being typed: digits and
// editing keys go to the input, enter jumps, esc cancels.
func (m exploreModel) updateJump(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.input.Reset()
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.jump()
		return m, nil
	case tea.KeyRunes:
		if !isDigits(string(key.Runes)) {
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *exploreModel) jump() {
	text := m.input.Value()
	m.input.Reset()
	m.input.Blur()
	if text == "" {
		return
	}
	v, _ := strconv.Atoi(text)
	if !m.g.HasVertex(v) {
		m.err = fmt.Errorf("vertex %d out of range [0, %d)", v, m.g.Len())
		return
	}
	m.selected, m.nbr = v, 0
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("sptree explore"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ move  tab neighbor  p parent  0-9 go to  ⏎ primary  s secondary  c clear  w write  q quit"))
	b.WriteString("\n\n")

	if m.g.Len() == 0 {
		b.WriteString(StyleDim.Render("empty graph"))
		b.WriteString("\n")
		m.footer(&b)
		return b.String()
	}

	view, err := m.s.View()
	if err != nil {
		b.WriteString(exploreErrorStyle.Render(err.Error()))
		return b.String()
	}
	primary, secondary := view.Primary.Root(), view.Secondary.Root()

	m.row(&b, "Primary", exploreRootStyle.Render(strconv.Itoa(primary))+
		StyleDim.Render(fmt.Sprintf("  reaches %d/%d, height %d", view.Primary.Reached(), m.g.Len(), view.Primary.Height())))
	m.row(&b, "Secondary", StyleHighlight.Render(strconv.Itoa(secondary))+
		StyleDim.Render(fmt.Sprintf("  reaches %d/%d, height %d", view.Secondary.Reached(), m.g.Len(), view.Secondary.Height())))
	b.WriteString("\n")

	v := m.selected
	pos, _ := m.g.Position(v)
	m.row(&b, "Vertex", exploreSelectStyle.Render(strconv.Itoa(v))+
		StyleDim.Render(fmt.Sprintf("  at (%g, %g), degree %d", pos.X, pos.Y, m.g.Degree(v))))
	m.row(&b, "Depth", StyleValue.Render(strconv.Itoa(view.Primary.Depth(v))))
	m.row(&b, "Diff", StyleValue.Render(strconv.Itoa(view.Diff.At(v))))
	m.row(&b, "Parent", StyleValue.Render(strconv.Itoa(view.Primary.Parent(v))))
	b.WriteString("\n")

	b.WriteString(m.neighborTable(view))
	b.WriteString("\n")
	m.footer(&b)
	return b.String()
}

func (m exploreModel) row(b *strings.Builder, key, value string) {
	b.WriteString(exploreKeyStyle.Render(key))
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}

// neighborTable lists the selected vertex's neighbors in angular order.
func (m exploreModel) neighborTable(view session.View) string {
	nbrs := m.g.Neighbors(m.selected)
	parent := view.Primary.Parent(m.selected)
	rows := make([][]string, len(nbrs))
	for i, w := range nbrs {
		mark := ""
		if w == parent {
			mark = "parent"
		} else if view.Primary.Parent(w) == m.selected {
			mark = "child"
		}
		rows[i] = []string{strconv.Itoa(w), strconv.Itoa(view.Primary.Depth(w)), strconv.Itoa(view.Diff.At(w)), mark}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Neighbor", "Depth", "Diff", "Tree").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return exploreHeaderStyle
			}
			if rows[row][3] == "" {
				return exploreDimCellStyle
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func (m exploreModel) footer(b *strings.Builder) {
	if m.input.Focused() {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(exploreErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(exploreStatusStyle.Render(m.status))
		b.WriteString("\n")
	}
}
