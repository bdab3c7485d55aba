package main

import (
	"fmt"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/capture"
	recallhttp "github.com/fwojciec/recall/http"
	"github.com/fwojciec/recall/lookup"
	"github.com/fwojciec/recall/prometheus"
	"github.com/fwojciec/recall/rod"
	recallslog "github.com/fwojciec/recall/slog"
)

// Run executes the run command. It blocks until the context is canceled
// or the browser connection is lost.
func (c *RunCmd) Run(deps *Dependencies) error {
	logger := deps.Logger

	bm, err := rod.NewBrowserManager(c.managerOptions()...)
	if err != nil {
		if c.ControlURL == "" {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or pass --control-url to attach to a running browser")
		}
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer bm.Close()

	browser := rod.NewBrowser(bm.Browser(),
		rod.WithScrollOffset(c.ScrollOffset),
		rod.WithLogger(logger),
	)
	gate := capture.NewGate(browser)
	metrics := prometheus.NewMetrics(gate)

	indexClient := recallhttp.NewIndexClient(
		recallhttp.WithEndpoint(c.IndexURL),
		recallhttp.WithOrigin(c.Origin),
		recallhttp.WithTimeout(c.Timeout),
	)
	searchClient := recallhttp.NewSearchClient(
		recallhttp.WithEndpoint(c.SearchURL),
		recallhttp.WithTimeout(c.Timeout),
	)

	var notifier recall.Notifier = recallslog.NewNotifier(logger)
	if c.NotifyURL != "" {
		notifier = recallhttp.NewNotifier(c.NotifyURL, recallhttp.WithTimeout(c.Timeout))
	}

	pipeline := &capture.Pipeline{
		Gate:      gate,
		Extractor: recallslog.NewLoggingExtractor(browser, logger),
		Indexer:   recallslog.NewLoggingIndexer(prometheus.NewIndexer(indexClient, metrics), logger),
		Notifier:  capture.NewThrottledNotifier(notifier, c.NotifyEvery),
		History:   deps.History,
		Logger:    logger,
	}

	finder := &lookup.Finder{
		Searcher:    recallslog.NewLoggingSearcher(searchClient, logger),
		Tabs:        browser,
		Excluder:    gate,
		Locator:     recallslog.NewLoggingLocator(browser, logger),
		Highlighter: browser,
		Logger:      logger,
	}

	server := recallhttp.NewServer()
	server.Addr = deps.AgentAddr
	server.Tabs = gate
	server.Finder = prometheus.NewFinder(finder, metrics)
	server.Metrics = metrics.Handler()
	server.Logger = logger
	if err := server.Open(); err != nil {
		return fmt.Errorf("failed to start control API on %s: %w", deps.AgentAddr, err)
	}
	defer server.Close()

	agent := &capture.Agent{
		Events:      browser,
		Gate:        gate,
		Pipeline:    pipeline,
		Concurrency: c.Concurrency,
		OnOutcome:   metrics.ObserveOutcome,
		Logger:      logger,
	}

	logger.Info("agent started",
		"control", server.URL(),
		"index", c.IndexURL,
		"attached", bm.Attached(),
	)
	fmt.Fprintf(deps.Stdout, "Capturing pages. Control API at %s\n", server.URL())

	if err := agent.Run(deps.Ctx); err != nil {
		return fmt.Errorf("agent stopped: %w", err)
	}
	logger.Info("agent stopped")
	return nil
}

func (c *RunCmd) managerOptions() []rod.ManagerOption {
	if c.ControlURL != "" {
		return []rod.ManagerOption{rod.WithControlURL(c.ControlURL)}
	}
	opts := []rod.ManagerOption{rod.WithHeadless(c.Headless)}
	if c.Bin != "" {
		opts = append(opts, rod.WithBin(c.Bin))
	}
	if c.Profile != "" {
		opts = append(opts, rod.WithUserDataDir(c.Profile))
	}
	return opts
}
