package keypad

import (
	"fmt"
	"strings"
)

// Key is one button on the keypad grid.
type Key struct {
	Symbol Symbol
	Label  string // what the button shows; differs from Symbol for backspace
	Row    int
	Col    int
	Rows   int // vertical span
}

// Layout is the button grid: two function rows above a three column
// number pad, with the operator column on the right and a double height
// equals key.
//
//	C  (  )  ×
//	√  %  ±  ÷
//	9  8  7  −
//	6  5  4  +
//	3  2  1  =
//	.  0  ⌫
type Layout struct {
	Keys []Key
	Cols int
	Rows int
}

// Standard returns the default calculator layout.
func Standard() Layout {
	pad := [][]Symbol{
		{ClearAll, OpenPar, ClosePar},
		{Sqrt, Percent, Negate},
		{"9", "8", "7"},
		{"6", "5", "4"},
		{"3", "2", "1"},
		{Point, "0", Delete},
	}
	l := Layout{Cols: 4, Rows: len(pad)}
	for r, row := range pad {
		for c, sym := range row {
			l.Keys = append(l.Keys, Key{Symbol: sym, Label: label(sym), Row: r, Col: c, Rows: 1})
		}
	}
	opCol := len(pad[0])
	for r, sym := range append(Operators[:len(Operators):len(Operators)], Eq) {
		k := Key{Symbol: sym, Label: label(sym), Row: r, Col: opCol, Rows: 1}
		if sym == Eq {
			k.Rows = l.Rows - r
		}
		l.Keys = append(l.Keys, k)
	}
	return l
}

func label(s Symbol) string {
	switch s {
	case ClearAll:
		return "C"
	case Delete:
		return "⌫"
	}
	return string(s)
}

// At returns the key covering grid cell (row, col).
func (l Layout) At(row, col int) (Key, bool) {
	for _, k := range l.Keys {
		if k.Col == col && row >= k.Row && row < k.Row+k.Rows {
			return k, true
		}
	}
	return Key{}, false
}

// Find returns the key carrying symbol s.
func (l Layout) Find(s Symbol) (Key, bool) {
	s = Canonical(s)
	for _, k := range l.Keys {
		if k.Symbol == s {
			return k, true
		}
	}
	return Key{}, false
}

// ColToName: 0 -> A, 25 -> Z, 26 -> AA and so on
func ColToName(col int) string {
	if col < 0 {
		return "?"
	}
	result := ""
	n := col + 1
	for n > 0 {
		n--
		result = string(rune('A'+(n%26))) + result
		n /= 26
	}
	return result
}

// Name renders a key position as e.g. "B3", used in log lines.
func (k Key) Name() string {
	return fmt.Sprintf("%s%d", ColToName(k.Col), k.Row+1)
}

// String draws the layout as text, one grid row per line.
func (l Layout) String() string {
	var b strings.Builder
	for r := 0; r < l.Rows; r++ {
		cells := make([]string, l.Cols)
		for c := 0; c < l.Cols; c++ {
			if k, ok := l.At(r, c); ok {
				cells[c] = k.Label
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		b.WriteByte('\n')
	}
	return b.String()
}
