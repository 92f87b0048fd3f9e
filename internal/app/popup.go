package app

import (
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

const helpText = `Keys
0-9 digits, + - * / operators (x also multiplies)
Enter or = evaluates, Backspace deletes, c or Delete clears
. r % n ( ) are on the pad but not implemented yet
Esc or a click on the banner dismisses a message

Commands (type :)
w <file>  export history as CSV
c         clear
q         quit

Press Esc or ? to close`

// PopupInput shows a modal input box with prompt and initial text.
// It returns the entered string and true on Enter, or "" and false when the
// user cancels with Esc.
func (a *App) PopupInput(s tcell.Screen, prompt, initial string) (string, bool) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorReset)

	promptRunes := []rune(prompt)
	buf := []rune(initial)
	pos := len(buf)

	w, h := s.Size()
	contentW := max(20, len(promptRunes)+len(buf)+2)
	if contentW > w-4 {
		contentW = w - 4
	}
	boxW := contentW + 4
	boxH := 3
	left := (w - boxW) / 2
	top := (h - boxH) / 2

	drawBox := func() {
		for y := top; y < top+boxH; y++ {
			for x := left; x < left+boxW; x++ {
				s.SetContent(x, y, ' ', nil, style)
			}
		}
		for x := left; x < left+boxW; x++ {
			s.SetContent(x, top, tcell.RuneHLine, nil, style)
			s.SetContent(x, top+boxH-1, tcell.RuneHLine, nil, style)
		}
		for y := top; y < top+boxH; y++ {
			s.SetContent(left, y, tcell.RuneVLine, nil, style)
			s.SetContent(left+boxW-1, y, tcell.RuneVLine, nil, style)
		}
		s.SetContent(left, top, tcell.RuneULCorner, nil, style)
		s.SetContent(left+boxW-1, top, tcell.RuneURCorner, nil, style)
		s.SetContent(left, top+boxH-1, tcell.RuneLLCorner, nil, style)
		s.SetContent(left+boxW-1, top+boxH-1, tcell.RuneLRCorner, nil, style)

		x := left + 2
		y := top + 1
		for i, r := range promptRunes {
			s.SetContent(x+i, y, r, nil, style)
		}
		x += len(promptRunes) + 1

		maxField := max(1, boxW-5-len(promptRunes))
		displayRunes := buf
		start := 0
		if len(displayRunes) > maxField {
			if pos > maxField {
				start = pos - maxField
			}
			displayRunes = displayRunes[start:min(len(buf), start+maxField)]
		}
		for i, r := range displayRunes {
			s.SetContent(x+i, y, r, nil, style)
		}
		s.ShowCursor(x+(pos-start), y)
	}

	redraw := func() {
		a.Draw(s)
		drawBox()
		s.Show()
	}
	redraw()

	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEsc:
				s.HideCursor()
				return "", false
			case tcell.KeyEnter:
				s.HideCursor()
				return string(buf), true
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if pos > 0 {
					buf = append(buf[:pos-1], buf[pos:]...)
					pos--
				}
			case tcell.KeyDelete:
				if pos < len(buf) {
					buf = append(buf[:pos], buf[pos+1:]...)
				}
			case tcell.KeyLeft:
				if pos > 0 {
					pos--
				}
			case tcell.KeyRight:
				if pos < len(buf) {
					pos++
				}
			case tcell.KeyHome:
				pos = 0
			case tcell.KeyEnd:
				pos = len(buf)
			default:
				if r := ev.Rune(); r != 0 && utf8.RuneCountInString(string(buf)) < 4096 {
					buf = append(buf[:pos], append([]rune{r}, buf[pos:]...)...)
					pos++
				}
			}
			redraw()
		case *tcell.EventInterrupt:
			a.HandleInterrupt(ev)
			redraw()
		case *tcell.EventResize:
			s.Sync()
			w, h = s.Size()
			if boxW > w-4 {
				boxW = w - 4
			}
			left = (w - boxW) / 2
			top = (h - boxH) / 2
			redraw()
		case nil:
			// screen finalized
			return "", false
		}
	}
}

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	innerW := min(w-6-padding*2, 56)
	if innerW < 10 {
		return
	}

	lines := wrapText(help, innerW)
	if maxLines := h - 4 - padding*2; len(lines) > maxLines {
		lines = lines[:max(0, maxLines)]
	}

	pw := innerW + padding*2
	ph := len(lines) + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	bgStyle := tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorWhite)

	for yy := 0; yy < ph; yy++ {
		for xx := 0; xx < pw; xx++ {
			s.SetContent(left+xx, top+yy, ' ', nil, bgStyle)
		}
	}

	s.SetContent(left, top, '┌', nil, borderStyle)
	s.SetContent(left+pw-1, top, '┐', nil, borderStyle)
	s.SetContent(left, top+ph-1, '└', nil, borderStyle)
	s.SetContent(left+pw-1, top+ph-1, '┘', nil, borderStyle)
	for xx := 1; xx < pw-1; xx++ {
		s.SetContent(left+xx, top, '─', nil, borderStyle)
		s.SetContent(left+xx, top+ph-1, '─', nil, borderStyle)
	}
	for yy := 1; yy < ph-1; yy++ {
		s.SetContent(left, top+yy, '│', nil, borderStyle)
		s.SetContent(left+pw-1, top+yy, '│', nil, borderStyle)
	}

	for i, ln := range lines {
		a.printText(s, left+padding, top+padding+i, ln, bgStyle)
	}
}

// wrapText splits s on newlines and wraps each line at word boundaries so
// no line exceeds width runes.
func wrapText(s string, width int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for utf8.RuneCountInString(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				runes := []rune(word)
				out = append(out, string(runes[:width]))
				word = string(runes[width:])
			}
			switch {
			case line == "":
				line = word
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
