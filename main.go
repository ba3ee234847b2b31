package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-dots/internal/board"
	"go-dots/internal/game"
	"go-dots/internal/round"
	"go-dots/internal/scoring"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	timeLowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	winStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	loopStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)

	// Palette of token colors, indexed by board.Color.
	dotStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Gesture key.Binding
	Start   key.Binding
	Copy    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move right")),
		Gesture: key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "grab/release chain")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start round")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy summary")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Gesture, k.Start, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Gesture, k.Start, k.Copy},
		{k.Help, k.Quit},
	}
}

type cell struct{ col, row int }

type localState struct {
	game *game.Game
	keys keyMap
	help help.Model

	cursorCol int
	cursorRow int
	dragging  bool

	// Presentation mirrors of the core observers.
	chainCells map[cell]bool
	looped     bool
	chainLen   int
	popping    map[cell]bool
	score      int
	preview    int
	summary    *round.Summary
	copied     bool
}

type TickMsg time.Time
type popMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// popCmd paces the removal animation: one cleared token "pops" per frame,
// feeding the game's completion latch.
func popCmd() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(time.Time) tea.Msg {
		return popMsg{}
	})
}

func initialModel(opts game.Options) (*localState, error) {
	storage, err := scoring.NewJSONFileStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to create score storage: %w", err)
	}
	history, err := scoring.LoadHistory(storage)
	if err != nil {
		return nil, fmt.Errorf("failed to load score history: %w", err)
	}

	g, err := game.New(opts, history)
	if err != nil {
		return nil, err
	}

	s := &localState{
		game:       g,
		keys:       defaultKeyMap(),
		help:       help.New(),
		chainCells: map[cell]bool{},
		popping:    map[cell]bool{},
	}

	g.OnChainChanged = func(tokens []*board.Token, looped bool) {
		s.chainCells = map[cell]bool{}
		for _, t := range tokens {
			s.chainCells[cell{t.Col, t.Row}] = true
		}
		s.chainLen = len(tokens)
		s.looped = looped
	}
	g.OnClearCommitted = func(cleared []*board.Token, _ []int) {
		s.popping = map[cell]bool{}
		for _, t := range cleared {
			s.popping[cell{t.Col, t.Row}] = true
		}
	}
	g.OnCompactionReport = func([]board.ColumnReport) {
		s.popping = map[cell]bool{}
	}
	g.OnScoreChanged = func(total, preview int) {
		s.score = total
		s.preview = preview
	}
	g.OnRoundStateChanged = func(state string, summary *round.Summary) {
		if state == round.StateEnded {
			s.summary = summary
			s.dragging = false
			s.popping = map[cell]bool{}
		}
		if state == round.StateRunning {
			s.summary = nil
			s.copied = false
		}
	}

	return s, nil
}

func (s *localState) Init() tea.Cmd {
	return nil
}

func (s *localState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if !s.game.Rounds.Running() {
			return s, nil
		}
		s.game.Tick()
		if s.game.Rounds.Running() {
			return s, tickCmd()
		}
		return s, nil

	case popMsg:
		s.game.ClearDone()
		if s.game.PendingClears() > 0 {
			return s, popCmd()
		}
		return s, nil

	case tea.WindowSizeMsg:
		s.help.Width = msg.Width
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *localState) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := s.keys
	switch {
	case key.Matches(msg, k.Quit):
		return s, tea.Quit

	case key.Matches(msg, k.Help):
		s.help.ShowAll = !s.help.ShowAll
		return s, nil

	case key.Matches(msg, k.Start):
		if s.game.Rounds.State() == round.StateEnded {
			s.game.Rounds.Acknowledge()
		}
		if err := s.game.StartRound(); err != nil {
			// Mid-round start requests are a no-op for the player.
			return s, nil
		}
		s.cursorCol = s.game.Board.Width() / 2
		s.cursorRow = s.game.Board.Height() / 2
		return s, tickCmd()

	case key.Matches(msg, k.Copy):
		if s.summary != nil {
			if err := clipboard.WriteAll(s.summaryLine()); err == nil {
				s.copied = true
			}
		}
		return s, nil

	case key.Matches(msg, k.Gesture):
		if !s.game.Rounds.Running() {
			return s, nil
		}
		if !s.dragging {
			s.dragging = true
			s.game.Press()
			s.game.TouchCell(s.cursorCol, s.cursorRow)
			return s, nil
		}
		s.dragging = false
		if n := s.game.ReleaseGesture(); n > 0 {
			return s, popCmd()
		}
		return s, nil

	case key.Matches(msg, k.Up):
		s.moveCursor(0, -1)
	case key.Matches(msg, k.Down):
		s.moveCursor(0, 1)
	case key.Matches(msg, k.Left):
		s.moveCursor(-1, 0)
	case key.Matches(msg, k.Right):
		s.moveCursor(1, 0)
	}
	return s, nil
}

func (s *localState) moveCursor(dx, dy int) {
	if !s.game.Rounds.Running() {
		return
	}
	col := s.cursorCol + dx
	row := s.cursorRow + dy
	if !s.game.Board.InBounds(col, row) {
		return
	}
	s.cursorCol, s.cursorRow = col, row
	if s.dragging {
		s.game.TouchCell(col, row)
	}
}

func (s *localState) RenderBoard() string {
	var b strings.Builder
	g := s.game
	for r := 0; r < g.Board.Height(); r++ {
		// Odd rows are shifted half a cell right in the staggered layout.
		if r%2 == 1 {
			b.WriteString(" ")
		}
		for c := 0; c < g.Board.Width(); c++ {
			b.WriteString(s.renderCell(c, r))
			if c < g.Board.Width()-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *localState) renderCell(c, r int) string {
	pos := cell{c, r}
	tok := s.game.Board.At(c, r)

	glyph := "●"
	style := lipgloss.NewStyle()
	if tok != nil {
		style = dotStyles[int(tok.Color)%len(dotStyles)]
	}

	if s.popping[pos] {
		glyph = "✶"
	} else if s.chainCells[pos] {
		glyph = "◉"
		if s.looped {
			style = loopStyle
		} else {
			style = style.Bold(true)
		}
	}

	if s.game.Rounds.Running() && c == s.cursorCol && r == s.cursorRow {
		return cursorStyle.Inherit(style).Render(glyph)
	}
	return style.Render(glyph)
}

func (s *localState) statusLine() string {
	g := s.game
	status := "SCORE: " + fmt.Sprint(s.score)
	if s.preview > 0 {
		status += fmt.Sprintf(" (+%d)", s.preview)
	}
	status += " | HIGH: " + fmt.Sprint(g.Rounds.HighScore())

	remaining := g.Rounds.Remaining()
	timeStr := fmt.Sprintf("%02d:%02d", remaining/60, remaining%60)
	if remaining*3 <= g.Rounds.Seconds() {
		timeStr = timeLowStyle.Render(timeStr)
	}
	status += " | TIME: " + timeStr

	if s.looped {
		status += " | " + loopStyle.Render("LOOP! clearing all "+fmt.Sprint(s.chainLen)+" captured")
	} else if s.chainLen > 0 {
		status += fmt.Sprintf(" | chain: %d", s.chainLen)
		if p := g.Tracker.BonusProportion(s.chainLen); p >= 1 {
			status += " " + winStyle.Render("x2!")
		}
	}
	return scoreStyle.Render(status)
}

func (s *localState) summaryLine() string {
	return fmt.Sprintf("go-dots round over: score %d, high score %d", s.summary.Score, s.summary.HighScore)
}

func (s *localState) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("go-dots") + dimStyle.Render("  connect the matching dots") + "\n\n")

	switch s.game.Rounds.State() {
	case round.StateIdle:
		b.WriteString(s.RenderBoard())
		b.WriteString("\n" + dimStyle.Render("press s to start a round") + "\n")

	case round.StateRunning:
		b.WriteString(s.RenderBoard())
		b.WriteString("\n" + s.statusLine() + "\n")

	case round.StateEnded:
		b.WriteString(winStyle.Render("Time's up!") + "\n\n")
		if s.summary != nil {
			b.WriteString(fmt.Sprintf("Final score: %d\n", s.summary.Score))
			if s.summary.NewHighScore {
				b.WriteString(winStyle.Render("New high score!") + "\n")
			} else {
				b.WriteString(fmt.Sprintf("High score: %d\n", s.summary.HighScore))
			}
		}
		if s.copied {
			b.WriteString(dimStyle.Render("summary copied to clipboard") + "\n")
		}
		b.WriteString("\n" + dimStyle.Render("s: new round | y: copy summary | q: quit") + "\n")
	}

	b.WriteString("\n" + s.help.View(s.keys))
	return b.String()
}

// durationFlag parses round lengths given as plain seconds or MM:SS.
type durationFlag int

func (d *durationFlag) String() string {
	return fmt.Sprint(int(*d))
}

func (d *durationFlag) Set(s string) error {
	if val, err := strconv.Atoi(s); err == nil {
		*d = durationFlag(val)
		return nil
	}
	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		min, err1 := strconv.Atoi(parts[0])
		sec, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil {
			*d = durationFlag(min*60 + sec)
			return nil
		}
	}
	return fmt.Errorf("invalid duration format: %s (use 'MM:SS' or seconds)", s)
}

func main() {
	var duration durationFlag = round.DefaultSeconds
	width := flag.Int("width", game.DefaultWidth, "board width in columns")
	height := flag.Int("height", game.DefaultHeight, "board height in rows")
	colors := flag.Int("colors", game.DefaultColors, "number of dot colors")
	seed := flag.Int64("seed", 0, "board random seed (0 = random)")
	flag.Var(&duration, "duration", "round length (e.g. 90 or 1:30)")
	flag.Var(&duration, "d", "round length (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDrag chains of matching dots before the timer runs out.\n")
		fmt.Fprintf(os.Stderr, "Re-enter your own chain to close a loop and clear the whole color.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	opts := game.Options{
		Width:        *width,
		Height:       *height,
		Colors:       *colors,
		RoundSeconds: int(duration),
		Seed:         *seed,
	}

	model, err := initialModel(opts)
	if err != nil {
		fmt.Printf("Error initializing model: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error starting the program: %v\n", err)
	}
}
