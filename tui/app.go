// Package tui is a terminal preview that drives a Source from frame ticks
// and shows the text it is rendering.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/glyphcast/graphics"
	"github.com/ByLCY/glyphcast/renderer"
	"github.com/ByLCY/glyphcast/source"
)

// Options configures the UI.
type Options struct {
	Source *source.Source
	// Device 用于读取纹理像素以保存快照。
	Device        *graphics.Memory
	FrameInterval time.Duration
	SnapshotPath  string
	Title         string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	src          *source.Source
	device       *graphics.Memory
	frame        time.Duration
	snapshotPath string
	title        string

	width    int
	height   int
	ready    bool
	viewport viewport.Model
	shown    string
	lastTick time.Time
	status   string
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8F8F2")).Background(lipgloss.Color("#6272A4")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BD93F9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#44475A"))
)

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	frame := opts.FrameInterval
	if frame <= 0 {
		frame = time.Second / 30
	}
	title := opts.Title
	if title == "" {
		title = "glyphcast"
	}
	return Model{
		src:          opts.Source,
		device:       opts.Device,
		frame:        frame,
		snapshotPath: opts.SnapshotPath,
		title:        title,
	}
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.frame)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(max(m.width-2, 1), max(m.height-4, 1))
			m.ready = true
		}
		m.viewport.Width = max(m.width-2, 1)
		m.viewport.Height = max(m.height-4, 1)
		m.refreshText(true)
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s":
		m.status = m.snapshot()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleTick 把两次 tick 之间的时间交给 Source。
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	elapsed := m.frame.Seconds()
	if !m.lastTick.IsZero() {
		elapsed = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now
	if m.src != nil {
		m.src.Tick(elapsed)
	}
	m.refreshText(false)
	return m, tickCmd(m.frame)
}

func (m *Model) refreshText(force bool) {
	if m.src == nil || !m.ready {
		return
	}
	text := m.src.Text()
	if !force && text == m.shown {
		return
	}
	m.shown = text
	m.viewport.SetContent(text)
	m.viewport.GotoBottom()
}

// snapshot 把当前纹理写成 PNG，返回状态栏文字。
func (m Model) snapshot() string {
	if m.src == nil || m.device == nil || m.src.Texture() == nil {
		return "没有可保存的纹理"
	}
	tex, ok := m.device.Lookup(m.src.Texture().ID())
	if !ok {
		return "纹理已释放"
	}
	if err := renderer.WritePNG(renderer.FromTexture(tex), m.snapshotPath); err != nil {
		return fmt.Sprintf("保存快照失败: %v", err)
	}
	return "已保存 " + m.snapshotPath
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	if m.src == nil {
		return mutedStyle.Render("no source")
	}
	parts := []string{fmt.Sprintf("%dx%d", m.src.Width(), m.src.Height())}
	if tex := m.src.Texture(); tex != nil {
		parts = append(parts, fmt.Sprintf("texture #%d", tex.ID()))
	} else {
		parts = append(parts, "no texture")
	}
	parts = append(parts, fmt.Sprintf("renders %d", m.src.Renders()))
	if w := m.src.Watch(); w.Path != "" {
		parts = append(parts, "watching "+w.Path)
	}
	line := statusStyle.Render(strings.Join(parts, "  "))
	if m.status != "" {
		line += "  " + mutedStyle.Render(m.status)
	}
	return line
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
