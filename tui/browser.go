// Package tui is the interactive results browser for terminal searches: a
// list of search results and a pager for the selected title's details,
// fetched lazily on open.
package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"mdlbot/output"
	"mdlbot/scraper"
)

// DetailsFunc fetches and parses one title's detail page. Invoked off the
// UI loop when the user opens an entry.
type DetailsFunc func(ctx context.Context, url string) (*scraper.Details, error)

// --- Messages ---

type detailMsg struct {
	idx      int
	rendered string
	err      error
}

// --- Browser state ---

type browserState int

const (
	stateList browserState = iota
	statePager
)

// --- Styles (Tokyo Night palette, as the rest of the toolchain) ---

var (
	tnFg      = lipgloss.Color("#a9b1d6")
	tnBlue    = lipgloss.Color("#7aa2f7")
	tnCyan    = lipgloss.Color("#7dcfff")
	tnRed     = lipgloss.Color("#f7768e")
	tnComment = lipgloss.Color("#565f89")
	tnDark    = lipgloss.Color("#1a1b26")
	tnGutter  = lipgloss.Color("#3b4261")

	logoStyle = lipgloss.NewStyle().
			Foreground(tnDark).
			Background(tnBlue).
			Bold(true).
			Padding(0, 1)

	countStyle = lipgloss.NewStyle().
			Foreground(tnCyan).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(tnComment)

	subtleStyle = lipgloss.NewStyle().
			Foreground(tnGutter)

	errStyle = lipgloss.NewStyle().
			Foreground(tnRed)

	selectedGutter = lipgloss.NewStyle().
			Foreground(tnBlue).
			SetString("│")

	normalGutter = lipgloss.NewStyle().
			Foreground(tnGutter).
			SetString(" ")

	selectedTitleStyle = lipgloss.NewStyle().
				Foreground(tnBlue).
				Bold(true)

	normalTitleStyle = lipgloss.NewStyle().
				Foreground(tnFg)

	selectedMetaStyle = lipgloss.NewStyle().
				Foreground(tnCyan)

	normalMetaStyle = lipgloss.NewStyle().
			Foreground(tnComment)
)

const (
	listItemHeight    = 3 // title + meta + gap
	listTopPadding    = 4 // blank + header + blank + separator
	listBottomPadding = 2 // blank + help
	listHPad          = 4
)

// --- Model ---

type browserModel struct {
	ctx     context.Context
	state   browserState
	query   string
	results []scraper.SearchResult
	details DetailsFunc

	width  int
	height int

	cursor     int
	listOffset int

	spinner  spinner.Model
	loading  bool
	loadErr  error
	viewport viewport.Model
	pagerIdx int
	rendered map[int]string
}

func newBrowserModel(ctx context.Context, query string, results []scraper.SearchResult, details DetailsFunc) browserModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(tnBlue)),
	)

	return browserModel{
		ctx:      ctx,
		state:    stateList,
		query:    query,
		results:  results,
		details:  details,
		spinner:  s,
		viewport: viewport.New(),
		rendered: make(map[int]string),
		pagerIdx: -1,
	}
}

func (m browserModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(msg.Height - 2)
		// Rendered width changed; re-render on next open.
		m.rendered = make(map[int]string)
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case detailMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.rendered[msg.idx] = msg.rendered
		m.state = statePager
		m.pagerIdx = msg.idx
		m.viewport.SetContent(msg.rendered)
		m.viewport.GotoTop()
		return m, nil
	}

	switch m.state {
	case stateList:
		return m.updateList(msg)
	case statePager:
		return m.updatePager(msg)
	}
	return m, nil
}

func (m browserModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.results)-1 {
				m.cursor++
				m.ensureVisible()
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
				m.ensureVisible()
			}
		case "g", "home":
			m.cursor = 0
			m.listOffset = 0
		case "G", "end":
			m.cursor = max(0, len(m.results)-1)
			m.ensureVisible()
		case "enter", "right", "l":
			if len(m.results) == 0 || m.loading {
				return m, nil
			}
			return m, m.openDetail(m.cursor)
		}
	}
	return m, nil
}

func (m browserModel) updatePager(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "left", "h":
			m.state = stateList
			return m, nil
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *browserModel) ensureVisible() {
	pp := m.perPage()
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	} else if m.cursor >= m.listOffset+pp {
		m.listOffset = m.cursor - pp + 1
	}
}

func (m browserModel) perPage() int {
	avail := m.height - listTopPadding - listBottomPadding
	return max(1, avail/listItemHeight)
}

// openDetail kicks off the detail fetch for the cursor entry, reusing the
// rendered page when it was opened before.
func (m *browserModel) openDetail(idx int) tea.Cmd {
	if cached, ok := m.rendered[idx]; ok {
		m.state = statePager
		m.pagerIdx = idx
		m.viewport.SetContent(cached)
		m.viewport.GotoTop()
		return nil
	}

	m.loading = true
	m.loadErr = nil
	return tea.Batch(m.spinner.Tick, m.fetchCmd(idx))
}

// fetchCmd fetches, formats and glamour-renders one detail page.
func (m browserModel) fetchCmd(idx int) tea.Cmd {
	ctx := m.ctx
	r := m.results[idx]
	fetch := m.details
	width := m.width
	return func() tea.Msg {
		d, err := fetch(ctx, r.URL)
		if err != nil {
			return detailMsg{idx: idx, err: err}
		}

		md := output.DetailMarkdown(d)
		ww := max(20, min(width-4, 100))
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("tokyo-night"),
			glamour.WithWordWrap(ww),
		)
		if err != nil {
			return detailMsg{idx: idx, rendered: md}
		}
		out, err := renderer.Render(md)
		if err != nil {
			return detailMsg{idx: idx, rendered: md}
		}
		return detailMsg{idx: idx, rendered: out}
	}
}

// --- Views ---

func (m browserModel) View() tea.View {
	var s string
	switch m.state {
	case statePager:
		s = m.pagerView()
	default:
		s = m.listView()
	}
	v := tea.NewView(s)
	v.AltScreen = true
	return v
}

func (m browserModel) listView() string {
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(logoStyle.Render("mdlbot"))
	b.WriteString("  ")
	b.WriteString(countStyle.Render(fmt.Sprintf("%d", len(m.results))))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" results for \"%s\"", m.query)))
	switch {
	case m.loading:
		b.WriteString(dimStyle.Render("  •  "))
		b.WriteString(m.spinner.View())
		b.WriteString(dimStyle.Render(" loading details"))
	case m.loadErr != nil:
		b.WriteString(errStyle.Render("  •  details unavailable"))
	}
	b.WriteString("\n\n  ")
	b.WriteString(subtleStyle.Render(strings.Repeat("─", max(0, m.width-4))))
	b.WriteString("\n")

	pp := m.perPage()
	end := min(m.listOffset+pp, len(m.results))
	truncTo := max(20, m.width-listHPad*2)

	for i := m.listOffset; i < end; i++ {
		r := m.results[i]
		isSel := i == m.cursor

		gut := normalGutter
		titStyle := normalTitleStyle
		metStyle := normalMetaStyle
		if isSel {
			gut = selectedGutter
			titStyle = selectedTitleStyle
			metStyle = selectedMetaStyle
		}

		meta := r.TypeYear
		if meta == "" {
			meta = r.URL
		}

		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s  %s\n", gut, titStyle.Render(ansi.Truncate(r.Title, truncTo, "…")))
		fmt.Fprintf(&b, "       %s\n", metStyle.Render(ansi.Truncate(meta, truncTo, "…")))
	}

	itemLines := (end - m.listOffset) * listItemHeight
	avail := m.height - listTopPadding - listBottomPadding - itemLines
	if avail > 0 {
		b.WriteString(strings.Repeat("\n", avail))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑↓/jk navigate  •  enter open  •  q quit"))
	return b.String()
}

func (m browserModel) pagerView() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	logo := logoStyle.Render("mdlbot")
	note := ""
	if m.pagerIdx >= 0 && m.pagerIdx < len(m.results) {
		note = " " + m.results[m.pagerIdx].URL + " "
	}
	help := dimStyle.Render("esc back  •  q quit ")

	noteMax := max(0, m.width-lipgloss.Width(logo)-lipgloss.Width(help))
	note = dimStyle.Render(ansi.Truncate(note, noteMax, "…"))

	pad := max(0, m.width-lipgloss.Width(logo)-lipgloss.Width(note)-lipgloss.Width(help))
	b.WriteString(logo)
	b.WriteString(note)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(help)
	return b.String()
}

// Browse opens the interactive results browser. fetch runs lazily when the
// user opens an entry; quitting cancels any fetch still in flight.
func Browse(ctx context.Context, query string, results []scraper.SearchResult, fetch DetailsFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newBrowserModel(ctx, query, results, fetch)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser TUI error: %w", err)
	}
	return nil
}
