package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/recall"
	recallhttp "github.com/fwojciec/recall/http"
	"github.com/fwojciec/recall/sqlite"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// A missing .env file is fine; flags and the environment still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	CaptureLog recall.CaptureLog
	Control    ControlService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("recall"),
		kong.Description("Capture visited pages into a local index and find them again."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'recall --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cli.LogLevel, cli.LogFile, stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	deps.Logger = logger

	// Only the agent and the history reader touch the database.
	command := kongCtx.Selected().Name
	if command == "run" || command == "history" {
		if cli.DB != "" {
			m.DBPath = cli.DB
		}
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set RECALL_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		if m.CaptureLog == nil {
			m.CaptureLog = sqlite.NewCaptureLog(m.DB)
		}
		deps.DB = m.DB
		deps.History = m.CaptureLog
	}

	if m.Control == nil {
		m.Control = recallhttp.NewControlClient("http://"+cli.Agent, recallhttp.WithTimeout(time.Minute))
	}
	deps.Control = m.Control
	deps.AgentAddr = cli.Agent

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("RECALL_DB"); path != "" {
		return path
	}
	dir := filepath.Join(xdg.DataHome, "recall")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "recall.db"
	}
	return filepath.Join(dir, "recall.db")
}

// newLogger builds the process logger. Logs go to stderr unless path is
// set, in which case they go to a size-rotated file.
func newLogger(level, path string, stderr io.Writer) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	w, closeFn := stderr, func() {}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    25,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		}
		w, closeFn = lj, func() { _ = lj.Close() }
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h), closeFn, nil
}
