package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"calculator/internal/config"
	"calculator/internal/input"
	"calculator/internal/keypad"
	"calculator/internal/logger"
	"calculator/internal/session"
	"calculator/internal/storage"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// statusExpired is posted by the status timer; the main loop turns it into
// a DismissStatus call so the session is only touched from one goroutine.
type statusExpired struct {
	seq uint64
}

type App struct {
	// layout
	KeyWidth    int
	KeyHeight   int
	StatusLines int
	Layout      keypad.Layout

	Session       *session.Session
	StatusTimeout time.Duration

	// UI state
	Mode        string // normal | command
	Notice      string // result of the last ":" command
	Quit        bool
	HelpVisible bool
	Pressed     keypad.Symbol // last key, highlighted on the pad

	snap        session.Snapshot
	post        func(tcell.Event) error
	timer       *time.Timer
	mouseDown   bool
	log         *slog.Logger
	unsubscribe func()
}

// NewApp wires a session to screen s. Status messages are dismissed after
// cfg.StatusTimeout via an interrupt posted to s.
func NewApp(s tcell.Screen, sess *session.Session, cfg config.Config, log *slog.Logger) *App {
	if log == nil {
		log = logger.Discard()
	}
	a := &App{
		KeyWidth:      7,
		KeyHeight:     3,
		StatusLines:   1,
		Layout:        keypad.Standard(),
		Session:       sess,
		StatusTimeout: cfg.StatusTimeout,
		Mode:          "normal",
		post:          s.PostEvent,
		log:           log.With("component", "app"),
	}
	a.snap = sess.Snapshot()
	a.unsubscribe = sess.Subscribe(a.observe)
	return a
}

// Close stops the status timer and detaches from the session.
func (a *App) Close() {
	if a.timer != nil {
		a.timer.Stop()
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Snapshot returns the state last published by the session.
func (a *App) Snapshot() session.Snapshot {
	return a.snap
}

func (a *App) observe(snap session.Snapshot) {
	prev := a.snap.Status
	a.snap = snap
	if snap.Status == nil || (prev != nil && prev.Seq == snap.Status.Seq) {
		return
	}
	a.armStatusTimer(snap.Status.Seq)
}

func (a *App) armStatusTimer(seq uint64) {
	if a.timer != nil {
		a.timer.Stop()
	}
	if a.StatusTimeout <= 0 || a.post == nil {
		return
	}
	post := a.post
	a.timer = time.AfterFunc(a.StatusTimeout, func() {
		_ = post(tcell.NewEventInterrupt(statusExpired{seq: seq}))
	})
}

// ----------------------------- Events / Input -----------------------------

// Press submits one symbol to the session.
func (a *App) Press(sym keypad.Symbol) {
	a.Pressed = keypad.Canonical(sym)
	a.Notice = ""
	a.Session.Submit(sym)
}

// HandleInterrupt processes events posted from timers.
func (a *App) HandleInterrupt(ev *tcell.EventInterrupt) {
	if exp, ok := ev.Data().(statusExpired); ok {
		a.Session.DismissStatus(exp.seq)
	}
}

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	// If help popup is visible, consume most keys and only allow closing with Esc or "?"
	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.Quit = true
		return
	case tcell.KeyEsc:
		// acknowledge the status message
		a.Session.ClearStatus()
		return
	case tcell.KeyEnter:
		a.Press(keypad.Eq)
		return
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.Press(keypad.Delete)
		return
	case tcell.KeyDelete:
		a.Press(keypad.ClearAll)
		return
	}

	r := ev.Rune()
	if r == 0 || ev.Key() != tcell.KeyRune {
		return
	}
	switch r {
	case 'q':
		a.Quit = true
	case '?':
		a.HelpVisible = true
	case ':':
		if s == nil {
			return
		}
		a.Mode = "command"
		command, ok := a.PopupInput(s, ":", "")
		a.Mode = "normal"
		if ok {
			a.ExecuteCommand(command)
		}
	case 'c', 'C':
		a.Press(keypad.ClearAll)
	default:
		a.Press(keySymbol(r))
	}
}

// keySymbol maps a typed character onto the keypad vocabulary. Characters
// without a key pass through so the session can report them.
func keySymbol(r rune) keypad.Symbol {
	switch r {
	case '*', 'x', 'X':
		return keypad.Multiply
	case '/':
		return keypad.Divide
	case '-':
		return keypad.Subtract
	case 'r':
		return keypad.Sqrt
	case 'n':
		return keypad.Negate
	}
	return keypad.Symbol(r)
}

// HandleMouseEvent presses the key under the pointer on button-down.
func (a *App) HandleMouseEvent(s tcell.Screen, ev *tcell.EventMouse) {
	down := ev.Buttons()&tcell.Button1 != 0
	wasDown := a.mouseDown
	a.mouseDown = down
	if !down || wasDown {
		return
	}
	if a.HelpVisible {
		a.HelpVisible = false
		return
	}

	w, h := s.Size()
	x, y := ev.Position()
	if a.snap.Status != nil && y == 0 {
		// tapping the banner acknowledges it
		a.Session.ClearStatus()
		return
	}
	if k, ok := a.KeyAt(w, h, x, y); ok {
		a.log.Debug("key clicked", "key", k.Name(), "symbol", string(k.Symbol))
		a.Press(k.Symbol)
	}
}

// ----------------------------- Geometry -----------------------------

// padOrigin returns the top-left screen cell of the keypad, which is
// centered horizontally and sits above the hint line.
func (a *App) padOrigin(w, h int) (int, int) {
	padW := a.Layout.Cols * a.KeyWidth
	padH := a.Layout.Rows * a.KeyHeight
	left := (w - padW) / 2
	if left < 0 {
		left = 0
	}
	top := h - a.StatusLines - padH
	if top < 0 {
		top = 0
	}
	return left, top
}

// KeyAt returns the key drawn at screen cell (x, y) on a w x h screen.
func (a *App) KeyAt(w, h, x, y int) (keypad.Key, bool) {
	left, top := a.padOrigin(w, h)
	if x < left || y < top {
		return keypad.Key{}, false
	}
	col := (x - left) / a.KeyWidth
	row := (y - top) / a.KeyHeight
	if col >= a.Layout.Cols || row >= a.Layout.Rows {
		return keypad.Key{}, false
	}
	return a.Layout.At(row, col)
}

// ----------------------------- Drawing -----------------------------

var (
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDisplay  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleToast    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed)
	styleInfo     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleNumber   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	styleFunction = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorOrange)
	styleOperator = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRebeccaPurple)
)

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()
	left, top := a.padOrigin(w, h)
	padW := a.Layout.Cols * a.KeyWidth
	right := left + padW

	// display: "=" marker when a result exists, then the value
	y := top - 2
	if y >= 0 {
		a.printRight(s, right, y, a.snap.Display, styleDisplay)
		if a.snap.HasLastResult {
			a.printText(s, left, y, "=", styleDim)
		}
	}
	// workings
	y--
	if y >= 0 {
		a.printRight(s, right, y, a.snap.Workings, styleDim)
	}
	// history grows upwards, most recent nearest the workings
	y--
	if y >= 1 && len(a.snap.History) > 0 {
		for x := left; x < right; x++ {
			s.SetContent(x, y, tcell.RuneHLine, nil, styleDim)
		}
		y--
		for _, entry := range a.snap.History {
			if y < 1 {
				break
			}
			a.printRight(s, right, y, entry, styleDim)
			y--
		}
	}

	a.drawKeypad(s, left, top)

	// toast banner on the first line
	if st := a.snap.Status; st != nil {
		style := styleToast
		if st.Kind == input.FeatureUnavailable {
			style = styleInfo
		}
		a.printCentered(s, 0, w, " "+st.Text+" ", style)
	}

	// hint line
	hint := ": command  ? help  q quit"
	if a.Notice != "" {
		hint = a.Notice
	}
	a.printText(s, 0, h-1, hint, styleDim)

	if a.HelpVisible {
		a.drawHelpPopup(s, helpText)
	}
	s.Show()
}

func (a *App) drawKeypad(s tcell.Screen, left, top int) {
	for _, k := range a.Layout.Keys {
		style := styleNumber
		switch keypad.Classify(k.Symbol) {
		case keypad.Operator, keypad.Equals:
			style = styleOperator
		case keypad.Function, keypad.Clear:
			style = styleFunction
		}
		if k.Symbol == a.Pressed {
			style = style.Reverse(true)
		}
		x0 := left + k.Col*a.KeyWidth
		y0 := top + k.Row*a.KeyHeight
		// one column and row of spacing between keys
		for yy := 0; yy < k.Rows*a.KeyHeight-1; yy++ {
			for xx := 0; xx < a.KeyWidth-1; xx++ {
				s.SetContent(x0+xx, y0+yy, ' ', nil, style)
			}
		}
		lw := runewidth.StringWidth(k.Label)
		lx := x0 + (a.KeyWidth-1-lw)/2
		ly := y0 + (k.Rows*a.KeyHeight-1)/2
		a.printText(s, lx, ly, k.Label, style)
	}
}

func (a *App) printText(s tcell.Screen, x, y int, str string, style tcell.Style) {
	for _, ch := range str {
		if x >= 0 && y >= 0 {
			s.SetContent(x, y, ch, nil, style)
		}
		x += runewidth.RuneWidth(ch)
	}
}

// printRight draws str so that it ends just before column right. Text
// wider than the space keeps its tail, like a calculator display.
func (a *App) printRight(s tcell.Screen, right, y int, str string, style tcell.Style) {
	width := runewidth.StringWidth(str)
	x := right - width
	if x < 0 {
		str = truncateLeft(str, right)
		x = right - runewidth.StringWidth(str)
	}
	a.printText(s, x, y, str, style)
}

func (a *App) printCentered(s tcell.Screen, y, w int, str string, style tcell.Style) {
	str = runewidth.Truncate(str, w, "…")
	x := (w - runewidth.StringWidth(str)) / 2
	a.printText(s, x, y, str, style)
}

// truncateLeft keeps the rightmost runes of str that fit in width cells.
func truncateLeft(str string, width int) string {
	runes := []rune(str)
	used := 0
	i := len(runes)
	for i > 0 {
		rw := runewidth.RuneWidth(runes[i-1])
		if used+rw > width {
			break
		}
		used += rw
		i--
	}
	return string(runes[i:])
}

// ----------------------------- Commands / Storage -----------------------------

func (a *App) ExecuteCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	switch parts[0] {
	case "q", "quit":
		a.Quit = true
	case "c", "clear":
		a.Session.Reset()
	case "w":
		if len(parts) < 2 {
			a.Notice = "usage: w <file>"
			return
		}
		path, err := storage.SaveCSV(a.Session.Entries(), parts[1])
		if err != nil {
			a.log.Error("export history", "file", parts[1], "error", err)
			a.Notice = fmt.Sprintf("error saving history: %v", err)
			return
		}
		a.log.Info("history exported", "file", path)
		a.Notice = "history saved to " + path
	default:
		a.Notice = "unknown command: " + parts[0]
	}
}
