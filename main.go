package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"calculator/internal/app"
	"calculator/internal/config"
	"calculator/internal/logger"
	"calculator/internal/session"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
)

var (
	configFile    string
	maxHistory    int
	precision     int
	statusTimeout time.Duration
	logLevel      string
	logFile       string
)

// rootCmd runs the interactive keypad.
var rootCmd = &cobra.Command{
	Use:   "calculator",
	Short: "Keypad calculator for the terminal",
	Long: `Calculator is a single-screen arithmetic calculator with a keypad,
a running expression line and a history of results.

Run without arguments for the interactive keypad, or use 'calculator eval'
to feed key presses from the command line.`,
	SilenceUsage: true,
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
		return runTUI(cfg, log)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (YAML), defaults to "+config.DefaultPath())
	rootCmd.PersistentFlags().IntVar(&maxHistory, "max-history", 0, "Keep at most this many history entries (0 keeps all)")
	rootCmd.PersistentFlags().IntVar(&precision, "precision", 10, "Fractional digits kept in results")
	rootCmd.PersistentFlags().DurationVar(&statusTimeout, "status-timeout", 2*time.Second, "How long status messages stay visible")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "none", "Log level: debug, info, warn, error, none")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path")
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("max-history") {
		cfg.MaxHistory = maxHistory
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("status-timeout") {
		cfg.StatusTimeout = statusTimeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	return cfg, cfg.Validate()
}

func newSession(cfg config.Config, log *slog.Logger) *session.Session {
	return session.New(
		session.WithMaxHistory(cfg.MaxHistory),
		session.WithPrecision(cfg.Precision),
		session.WithLogger(log),
	)
}

func runTUI(cfg config.Config, log *slog.Logger) error {
	// start tcell
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("cannot create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("cannot init screen: %w", err)
	}
	defer s.Fini()

	s.EnableMouse()
	s.Clear()

	a := app.NewApp(s, newSession(cfg, log), cfg, log)
	defer a.Close()
	log.Info("started", "max_history", cfg.MaxHistory, "precision", cfg.Precision)

	// main loop
	for !a.Quit {
		a.Draw(s)
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			a.HandleKeyEvent(s, ev)
		case *tcell.EventMouse:
			a.HandleMouseEvent(s, ev)
		case *tcell.EventInterrupt:
			a.HandleInterrupt(ev)
		case *tcell.EventResize:
			s.Sync()
		case nil:
			return nil
		}
	}
	return nil
}
