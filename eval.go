package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"calculator/internal/input"
	"calculator/internal/keypad"
	"calculator/internal/logger"
	"calculator/internal/session"
	"calculator/internal/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportFile string
	strict     bool
	noColor    bool
)

var evalCmd = &cobra.Command{
	Use:   "eval [keys...]",
	Short: "Press keys without the interactive keypad",
	Long: `Eval feeds key presses to a calculator session and prints the result.

Each argument is one key ("clear", "⌫", "=", "7") or a run of keys typed
together ("12+3="). With no arguments, keys are read from stdin.`,
	Example: `  calculator eval 5+3=
  calculator eval 9 ÷ 3 = × 4 =
  echo "2*3= +4=" | calculator eval --export history.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, closer, err := logger.Open(logger.ParseLevel(cfg.LogLevel), cfg.LogFile)
		if err != nil {
			return err
		}
		defer closer.Close()

		tokens := args
		if len(tokens) == 0 {
			tokens, err = readTokens(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}
		if noColor {
			color.NoColor = true
		}

		sess := newSession(cfg, log)
		rejected := runEval(cmd.OutOrStdout(), sess, tokens)

		if exportFile != "" {
			path, err := storage.SaveCSV(sess.Entries(), exportFile)
			if err != nil {
				return fmt.Errorf("export history: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "history saved to %s\n", path)
		}
		if strict && rejected > 0 {
			return fmt.Errorf("%d key(s) rejected", rejected)
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVar(&exportFile, "export", "", "Write the history to this CSV file")
	evalCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any key is rejected")
	evalCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.AddCommand(evalCmd)
}

func readTokens(r io.Reader) ([]string, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		tokens = append(tokens, strings.Fields(sc.Text())...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}
	return tokens, nil
}

// splitKeys turns a token into key presses: a known key stays whole,
// anything else is typed one character at a time.
func splitKeys(token string) []keypad.Symbol {
	if keypad.Classify(keypad.Symbol(token)) != keypad.Unknown {
		return []keypad.Symbol{keypad.Symbol(token)}
	}
	keys := make([]keypad.Symbol, 0, len(token))
	for _, r := range token {
		keys = append(keys, keypad.Symbol(r))
	}
	return keys
}

// runEval presses every key, printing status messages as they happen and
// the final history and display. It returns the number of rejected keys.
func runEval(w io.Writer, sess *session.Session, tokens []string) int {
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)
	dim := color.New(color.Faint)
	result := color.New(color.FgGreen, color.Bold)

	rejected := 0
	for _, tok := range tokens {
		for _, key := range splitKeys(tok) {
			snap := sess.Submit(key)
			if snap.Status == nil {
				continue
			}
			rejected++
			c := fail
			if snap.Status.Kind == input.FeatureUnavailable {
				c = warn
			}
			c.Fprintf(w, "%q: %s\n", string(key), snap.Status.Text)
		}
	}

	snap := sess.Snapshot()
	for i := len(snap.History) - 1; i >= 0; i-- {
		dim.Fprintln(w, snap.History[i])
	}
	if snap.Workings != "" {
		dim.Fprintln(w, snap.Workings)
	}
	result.Fprintln(w, snap.Display)
	return rejected
}
