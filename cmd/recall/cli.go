package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/recall"
	recallhttp "github.com/fwojciec/recall/http"
	"github.com/fwojciec/recall/sqlite"
)

// ControlService is the part of a running agent the CLI talks to.
type ControlService interface {
	recall.Finder
	Tabs(ctx context.Context) (*recallhttp.TabsResponse, error)
	ExcludeTab(ctx context.Context, id recall.TabID) error
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	DB      *sqlite.DB
	History recall.CaptureLog
	Control ControlService

	// AgentAddr is the control API address the agent listens on.
	AgentAddr string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB       string `name:"db" env:"RECALL_DB" help:"Capture history database path"`
	Agent    string `default:"127.0.0.1:7777" env:"RECALL_AGENT" help:"Control API address of the agent"`
	LogLevel string `default:"info" env:"RECALL_LOG_LEVEL" enum:"debug,info,warn,error" help:"Log level"`
	LogFile  string `env:"RECALL_LOG_FILE" type:"path" help:"Write logs to a rotated file instead of stderr"`

	Run     RunCmd     `cmd:"" help:"Run the capture agent attached to a browser"`
	Search  SearchCmd  `cmd:"" help:"Search captured pages and open the best match"`
	Tabs    TabsCmd    `cmd:"" help:"Show the agent's per-tab capture state"`
	Exclude ExcludeCmd `cmd:"" help:"Exclude a tab from capture"`
	Locate  LocateCmd  `cmd:"" help:"Find a text fragment in a saved HTML file"`
	History HistoryCmd `cmd:"" help:"List recent capture attempts"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	ControlURL   string        `name:"control-url" env:"RECALL_CONTROL_URL" help:"Attach to a running browser (DevTools URL or host:port) instead of launching one"`
	Bin          string        `env:"RECALL_BROWSER_BIN" help:"Browser executable to launch"`
	Profile      string        `env:"RECALL_PROFILE" type:"path" help:"Profile directory of a launched browser"`
	Headless     bool          `help:"Launch the browser without a window"`
	IndexURL     string        `name:"index-url" default:"http://127.0.0.1:8080/index-website" env:"RECALL_INDEX_URL" help:"Indexing service endpoint"`
	SearchURL    string        `name:"search-url" default:"http://127.0.0.1:8081/search-agent" env:"RECALL_SEARCH_URL" help:"Search service endpoint"`
	Origin       string        `env:"RECALL_ORIGIN" help:"Origin header sent with index submissions"`
	NotifyURL    string        `name:"notify-url" env:"RECALL_NOTIFY_URL" help:"ntfy-style endpoint for failure notifications (logged if unset)"`
	NotifyEvery  time.Duration `name:"notify-every" default:"1m" help:"Minimum interval between identical notifications"`
	Timeout      time.Duration `default:"10s" help:"HTTP request timeout"`
	Concurrency  int           `short:"c" default:"8" help:"Concurrent capture limit"`
	ScrollOffset float64       `name:"scroll-offset" default:"120" help:"Pixels kept above a highlighted passage"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query []string `arg:"" help:"Free-text query"`
}

// TabsCmd is the "tabs" subcommand.
type TabsCmd struct{}

// ExcludeCmd is the "exclude" subcommand.
type ExcludeCmd struct {
	TabID string `arg:"" name:"tab" help:"Tab identifier"`
}

// LocateCmd is the "locate" subcommand.
type LocateCmd struct {
	File     string `arg:"" type:"existingfile" help:"Saved HTML file"`
	Fragment string `arg:"" help:"Text fragment to find"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Tab    string `help:"Only show captures for this tab"`
	URL    string `name:"url" help:"Only show captures of this URL"`
	Failed bool   `help:"Only show failed attempts"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of entries"`
}
