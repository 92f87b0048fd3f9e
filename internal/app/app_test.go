package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"calculator/internal/config"
	"calculator/internal/input"
	"calculator/internal/keypad"
	"calculator/internal/session"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	screenW = 40
	screenH = 30
)

func newTestApp(t *testing.T, timeout time.Duration) (*App, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(screenW, screenH)
	t.Cleanup(s.Fini)

	cfg := config.Default()
	cfg.StatusTimeout = timeout
	a := NewApp(s, session.New(), cfg, nil)
	t.Cleanup(a.Close)
	return a, s
}

func typeKeys(a *App, s tcell.Screen, keys string) {
	for _, r := range keys {
		a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}

func screenText(s tcell.Screen) string {
	_, h := s.Size()
	lines := make([]string, h)
	for y := 0; y < h; y++ {
		lines[y] = rowText(s, y)
	}
	return strings.Join(lines, "\n")
}

func TestKeyboardCalculation(t *testing.T) {
	a, s := newTestApp(t, 0)
	typeKeys(a, s, "5+3")
	a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	snap := a.Snapshot()
	require.Len(t, snap.History, 1)
	assert.Equal(t, "5+3 = 8", snap.History[0])
	assert.Equal(t, "8", snap.Display)

	a.Draw(s)
	assert.Contains(t, screenText(s), "5+3 = 8")
}

func TestKeyboardAliases(t *testing.T) {
	a, s := newTestApp(t, 0)
	typeKeys(a, s, "9-4*2=")
	assert.Equal(t, "9−4×2 = 1", a.Snapshot().History[0])

	typeKeys(a, s, "/2")
	a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	assert.Equal(t, "1÷", a.Snapshot().Workings)

	typeKeys(a, s, "c")
	assert.Empty(t, a.Snapshot().Workings)
	assert.Empty(t, a.Snapshot().History)
}

func TestRejectedKeyShowsBanner(t *testing.T) {
	a, s := newTestApp(t, 0)
	typeKeys(a, s, "+")

	snap := a.Snapshot()
	require.NotNil(t, snap.Status)
	assert.Equal(t, input.InputRejected, snap.Status.Kind)

	a.Draw(s)
	assert.Contains(t, rowText(s, 0), input.MsgInvalidInput)

	a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone))
	assert.Nil(t, a.Snapshot().Status)
}

func TestUnknownKeyReported(t *testing.T) {
	a, s := newTestApp(t, 0)
	typeKeys(a, s, "z")
	require.NotNil(t, a.Snapshot().Status)
	assert.Equal(t, input.MsgButtonNotFound, a.Snapshot().Status.Text)
}

func TestInterruptDismissesMatchingStatus(t *testing.T) {
	a, s := newTestApp(t, time.Hour)
	typeKeys(a, s, ".")
	st := a.Snapshot().Status
	require.NotNil(t, st)

	a.HandleInterrupt(tcell.NewEventInterrupt(statusExpired{seq: st.Seq + 1}))
	assert.NotNil(t, a.Snapshot().Status)

	a.HandleInterrupt(tcell.NewEventInterrupt(statusExpired{seq: st.Seq}))
	assert.Nil(t, a.Snapshot().Status)
}

func TestStatusTimerPostsInterrupt(t *testing.T) {
	a, s := newTestApp(t, 10*time.Millisecond)
	typeKeys(a, s, "=")
	require.NotNil(t, a.Snapshot().Status)

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if iev, ok := ev.(*tcell.EventInterrupt); ok {
				a.HandleInterrupt(iev)
				assert.Nil(t, a.Snapshot().Status)
				return
			}
		case <-deadline:
			t.Fatal("status timer never fired")
		}
	}
}

func TestMouseClickPressesKey(t *testing.T) {
	a, s := newTestApp(t, 0)
	click := func(sym keypad.Symbol) {
		k, ok := a.Layout.Find(sym)
		require.True(t, ok)
		left, top := a.padOrigin(screenW, screenH)
		x := left + k.Col*a.KeyWidth + 1
		y := top + k.Row*a.KeyHeight + 1
		a.HandleMouseEvent(s, tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
		a.HandleMouseEvent(s, tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
	}

	click("7")
	click("×")
	click("6")
	click("=")
	assert.Equal(t, "7×6 = 42", a.Snapshot().History[0])
	assert.Equal(t, keypad.Eq, a.Pressed)
}

func TestMouseHeldDoesNotRepeat(t *testing.T) {
	a, s := newTestApp(t, 0)
	k, _ := a.Layout.Find("1")
	left, top := a.padOrigin(screenW, screenH)
	x, y := left+k.Col*a.KeyWidth, top+k.Row*a.KeyHeight

	a.HandleMouseEvent(s, tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	a.HandleMouseEvent(s, tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	assert.Equal(t, "1", a.Snapshot().Workings)
}

func TestKeyAt(t *testing.T) {
	a, _ := newTestApp(t, 0)
	left, top := a.padOrigin(screenW, screenH)

	k, ok := a.KeyAt(screenW, screenH, left, top)
	require.True(t, ok)
	assert.Equal(t, keypad.ClearAll, k.Symbol)

	_, ok = a.KeyAt(screenW, screenH, 0, 0)
	assert.False(t, ok)

	_, ok = a.KeyAt(screenW, screenH, left+a.Layout.Cols*a.KeyWidth, top)
	assert.False(t, ok)
}

func TestHelpPopupConsumesKeys(t *testing.T) {
	a, s := newTestApp(t, 0)
	typeKeys(a, s, "?")
	require.True(t, a.HelpVisible)

	typeKeys(a, s, "12")
	assert.Empty(t, a.Snapshot().Workings)

	a.Draw(s)
	assert.Contains(t, screenText(s), "export history as CSV")

	typeKeys(a, s, "?")
	assert.False(t, a.HelpVisible)
}

func TestExecuteCommandExportsHistory(t *testing.T) {
	a, s := newTestApp(t, 0)
	typeKeys(a, s, "2+2=")

	target := filepath.Join(t.TempDir(), "history")
	a.ExecuteCommand("w " + target)
	assert.Equal(t, "history saved to "+target+".csv", a.Notice)

	data, err := os.ReadFile(target + ".csv")
	require.NoError(t, err)
	assert.Equal(t, "expression,result\n2+2,4\n", string(data))

	a.ExecuteCommand("w")
	assert.Equal(t, "usage: w <file>", a.Notice)

	a.ExecuteCommand("bogus")
	assert.Contains(t, a.Notice, "unknown command")

	a.ExecuteCommand("q")
	assert.True(t, a.Quit)
}

func TestDrawShowsResultMarker(t *testing.T) {
	a, s := newTestApp(t, 0)
	a.Draw(s)
	left, top := a.padOrigin(screenW, screenH)
	assert.NotContains(t, rowText(s, top-2), "=")

	typeKeys(a, s, "4=")
	a.Draw(s)
	row := rowText(s, top-2)
	assert.Equal(t, '=', []rune(row)[left])
	assert.True(t, strings.HasSuffix(strings.TrimRight(row, " "), "4"))
}

func TestQuitKeys(t *testing.T) {
	a, s := newTestApp(t, 0)
	a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	assert.True(t, a.Quit)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 7))
	assert.Equal(t, []string{"abc", "def"}, wrapText("abcdef", 3))
	assert.Equal(t, []string{"a", "", "b"}, wrapText("a\n\nb", 10))
}
