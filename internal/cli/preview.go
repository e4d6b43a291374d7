package cli

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bitter/pkg/geom"
	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/scene"
	"github.com/matzehuels/bitter/pkg/snapshot"
	"github.com/matzehuels/bitter/pkg/surface"
)

// previewCommand creates the preview command for exploring a scene
// interactively.
func (c *CLI) previewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [scene.toml]",
		Short: "Explore a scene interactively in the terminal",
		Long: `Explore a scene interactively in the terminal.

The focused output is drawn to scale with one coloured block per tile. Open
and close windows to watch the partition tree re-tile them.

Keys:
  n        open a new window on the focused output
  d        close the selected window
  j/k      select the next/previous window
  tab      show the next output
  f        render a frame on every output
  q        quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m := newPreviewModel(cmd.Context(), sess)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	return cmd
}

var (
	previewPalette = []color.RGBA{
		{R: 0xe0, G: 0x7a, B: 0x5f, A: 0xff},
		{R: 0x81, G: 0xb2, B: 0x9a, A: 0xff},
		{R: 0xf2, G: 0xcc, B: 0x8f, A: 0xff},
		{R: 0x6d, G: 0x59, B: 0x7a, A: 0xff},
		{R: 0x3d, G: 0x40, B: 0x5b, A: 0xff},
	}

	previewHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
	previewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// previewModel is the bubbletea model behind `bitter preview`. It owns the
// session; Update is the only place the compositor is touched.
type previewModel struct {
	ctx      context.Context
	sess     *scene.Session
	colors   map[string]color.RGBA
	output   int
	selected int
	spawned  int
	width    int
	height   int
	status   string
}

func newPreviewModel(ctx context.Context, sess *scene.Session) previewModel {
	m := previewModel{
		ctx:    ctx,
		sess:   sess,
		colors: make(map[string]color.RGBA),
		width:  80,
		height: 24,
	}
	for i, s := range sess.Surfaces {
		m.colors[s.ID()] = sess.Clients[i].Color()
	}
	if focused := sess.Server.FocusedOutput(); focused != nil {
		for i, o := range sess.Server.Outputs() {
			if o == focused {
				m.output = i
			}
		}
	}
	return m
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if n := len(m.sess.Server.Outputs()); n > 0 {
				m.output = (m.output + 1) % n
				m.selected = 0
			}
		case "j", "down":
			if m.selected < len(m.tiles())-1 {
				m.selected++
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
			}
		case "n":
			m.openWindow()
		case "d":
			m.closeSelected()
		case "f":
			m.renderFrame()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m *previewModel) openWindow() {
	m.spawned++
	c := previewPalette[(len(m.colors))%len(previewPalette)]
	client := headless.NewSurface(headless.SurfaceOptions{
		Title: fmt.Sprintf("window %d", m.spawned),
		Role:  surface.RoleToplevel,
		Color: c,
	})
	surf, err := m.sess.Server.NewSurface(m.ctx, client)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.colors[surf.ID()] = c
	m.selected = 0
	m.status = "opened " + surf.Title()
}

func (m *previewModel) closeSelected() {
	tiles := m.tiles()
	if m.selected >= len(tiles) {
		return
	}
	t := tiles[m.selected]
	if err := m.sess.Server.DestroySurface(m.ctx, t.ID); err != nil {
		m.status = err.Error()
		return
	}
	delete(m.colors, t.ID)
	if m.selected > 0 && m.selected >= len(tiles)-1 {
		m.selected--
	}
	m.status = "closed " + t.Title
}

func (m *previewModel) renderFrame() {
	stats, err := m.sess.Frame(m.ctx, time.Now())
	drawn := 0
	for _, st := range stats {
		drawn += st.Drawn
	}
	m.status = fmt.Sprintf("frame: %d buffers drawn", drawn)
	if err != nil {
		m.status += " · " + err.Error()
	}
}

// current returns the snapshot of the output being shown.
func (m previewModel) current() (snapshot.Output, bool) {
	outs := snapshot.Take(m.sess.Server).Outputs
	if m.output >= len(outs) {
		return snapshot.Output{}, false
	}
	return outs[m.output], true
}

func (m previewModel) tiles() []snapshot.Tile {
	o, ok := m.current()
	if !ok {
		return nil
	}
	return o.Tiles
}

func (m previewModel) View() string {
	var b strings.Builder

	o, ok := m.current()
	if !ok {
		b.WriteString(StyleTitle.Render("No outputs"))
		b.WriteString("\n")
		b.WriteString(previewHelpStyle.Render("q quit"))
		return b.String()
	}

	b.WriteString(StyleTitle.Render(o.Name))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%s · %s · %d tiles", o.Box.Box(), o.Root, len(o.Tiles))))
	b.WriteString("\n\n")

	cols, rows := max(m.width-2, 10), max(m.height-7, 4)
	b.WriteString(m.drawOutput(o, cols, rows))
	b.WriteString("\n\n")

	if m.selected < len(o.Tiles) {
		b.WriteString(previewSelectedStyle.Render("▸ " + o.Tiles[m.selected].Title))
		b.WriteString(" ")
		b.WriteString(StyleDim.Render(o.Tiles[m.selected].Box.Box().String()))
	}
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(previewHelpStyle.Render("n new  d close  j/k select  tab output  f frame  q quit"))
	return b.String()
}

// drawOutput paints every tile of o into a cols x rows character grid.
func (m previewModel) drawOutput(o snapshot.Output, cols, rows int) string {
	grid := rasterize(o, cols, rows)
	bg := hexColor(m.sess.Server.Background())

	var b strings.Builder
	for y, line := range grid {
		if y > 0 {
			b.WriteString("\n")
		}
		for x := 0; x < len(line); {
			owner := line[x]
			end := x
			for end < len(line) && line[end] == owner {
				end++
			}
			style := lipgloss.NewStyle().Background(bg)
			text := strings.Repeat(" ", end-x)
			if owner >= 0 {
				t := o.Tiles[owner]
				style = style.Background(hexColor(m.colors[t.ID])).Foreground(colorWhite)
				if owner == m.selected {
					style = style.Bold(true).Underline(true)
				}
				text = tileCaption(t, grid, owner, x, end, y)
			}
			b.WriteString(style.Render(text))
			x = end
		}
	}
	return b.String()
}

// tileCaption returns the text for one run of a tile's cells: the title on
// the tile's first row, blanks elsewhere.
func tileCaption(t snapshot.Tile, grid [][]int, owner, x0, x1, y int) string {
	width := x1 - x0
	if y > 0 && grid[y-1][x0] == owner {
		return strings.Repeat(" ", width)
	}
	title := " " + t.Title
	if len(title) > width {
		title = title[:width]
	}
	return title + strings.Repeat(" ", width-len(title))
}

// rasterize maps each character cell to the index of the tile covering its
// centre, or -1.
func rasterize(o snapshot.Output, cols, rows int) [][]int {
	box := o.Box
	grid := make([][]int, rows)
	for y := range grid {
		grid[y] = make([]int, cols)
		py := box.Y + (2*y+1)*box.Height/(2*rows)
		for x := range grid[y] {
			px := box.X + (2*x+1)*box.Width/(2*cols)
			grid[y][x] = -1
			for i, t := range o.Tiles {
				if t.Box.Box().Contains(geom.Point{X: px, Y: py}) {
					grid[y][x] = i
					break
				}
			}
		}
	}
	return grid
}
