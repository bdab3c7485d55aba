package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// BrowserManager owns the browser connection. It either launches a Chrome
// instance for the user to browse in, or attaches to one that is already
// running with remote debugging enabled.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	mu       sync.Mutex
	closed   atomic.Bool

	controlURL string
	headless   bool
	bin        string
	userData   string
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithControlURL attaches to a running browser instead of launching one.
// Accepts a DevTools websocket URL or a host:port such as "127.0.0.1:9222".
func WithControlURL(u string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.controlURL = u
	}
}

// WithHeadless launches the browser without a window. Only useful for tests.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// WithBin sets the browser executable. Defaults to rod's lookup.
func WithBin(path string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.bin = path
	}
}

// WithUserDataDir sets the profile directory of a launched browser.
func WithUserDataDir(dir string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.userData = dir
	}
}

// NewBrowserManager connects to or launches a browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{}
	for _, opt := range opts {
		opt(bm)
	}

	var err error
	if bm.controlURL != "" {
		err = bm.connectBrowser()
	} else {
		err = bm.launchBrowser()
	}
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// Browser returns the browser instance.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.browser
}

// Attached returns true if the manager attached to a running browser.
func (bm *BrowserManager) Attached() bool {
	return bm.controlURL != ""
}

// Close releases browser resources. A launched browser is shut down; an
// attached browser is left running. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.closeBrowser()
}

// connectBrowser attaches to the browser at controlURL.
func (bm *BrowserManager) connectBrowser() error {
	u, err := launcher.ResolveURL(bm.controlURL)
	if err != nil {
		return fmt.Errorf("resolving browser control URL: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	return nil
}

// launchBrowser starts a new browser instance. Background tabs keep
// running timers so their load events are delivered promptly.
func (bm *BrowserManager) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(bm.headless)
	if bm.bin != "" {
		lnchr = lnchr.Bin(bm.bin)
	}
	if bm.userData != "" {
		lnchr = lnchr.UserDataDir(bm.userData)
	}

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// closeBrowser shuts down a launched browser and its launcher.
// Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	if bm.launcher == nil {
		bm.browser = nil
		return nil
	}
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	bm.launcher.Kill()
	bm.launcher = nil
	return err
}

// LauncherPID returns the process ID of the browser launcher, or 0 for an
// attached browser. This method exists for testing purposes to verify
// proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
