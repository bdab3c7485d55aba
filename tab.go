package recall

import "context"

// TabID identifies a browser tab. With the DevTools protocol this is the
// page's target ID. Tab identifiers are not reused within a browser session.
type TabID string

// NavigationSignal reports that a tab finished loading a page.
type NavigationSignal struct {
	TabID TabID  `json:"tabId"`
	URL   string `json:"url"`
}

// TabRecord holds the last URL successfully submitted for a tab.
type TabRecord struct {
	TabID            TabID  `json:"tabId"`
	LastSubmittedURL string `json:"lastSubmittedUrl"`
}

// EventType identifies the kind of browser event.
type EventType int

// Event types delivered by an EventSource.
const (
	// EventNavigationCompleted fires when a tab finishes loading a page.
	EventNavigationCompleted EventType = iota + 1

	// EventTabClosed fires when a tab is destroyed.
	EventTabClosed

	// EventTabOpenedBySearch marks a tab as opened by the search flow.
	EventTabOpenedBySearch
)

// String returns a lowercase name for the event type.
func (t EventType) String() string {
	switch t {
	case EventNavigationCompleted:
		return "navigation-completed"
	case EventTabClosed:
		return "tab-closed"
	case EventTabOpenedBySearch:
		return "tab-opened-by-search"
	default:
		return "unknown"
	}
}

// Event is a browser event. URL is only set for EventNavigationCompleted.
type Event struct {
	Type  EventType
	TabID TabID
	URL   string
}

// Signal returns the navigation signal carried by the event.
func (e Event) Signal() NavigationSignal {
	return NavigationSignal{TabID: e.TabID, URL: e.URL}
}

// EventHandler receives browser events. It may block; sources deliver
// events for a single tab in the order the browser raised them.
type EventHandler func(Event)

// EventSource streams browser events.
type EventSource interface {
	// Watch delivers events to fn until ctx is canceled or the browser
	// connection is lost. Returns ctx.Err() after cancellation.
	Watch(ctx context.Context, fn EventHandler) error
}

// ActiveTabResolver reports which tab is in the foreground.
type ActiveTabResolver interface {
	// ActiveTab returns the foreground tab.
	// Returns ENOTFOUND if no tab is in the foreground.
	ActiveTab(ctx context.Context) (TabID, error)
}

// TabOpener opens tabs and navigates them.
type TabOpener interface {
	// OpenTab opens a new blank tab and returns its identifier.
	OpenTab(ctx context.Context) (TabID, error)

	// Navigate loads url in the tab and waits for the load event.
	// Returns ENOTFOUND if the tab does not exist.
	Navigate(ctx context.Context, id TabID, url string) error
}

// TabExcluder marks tabs that must never be captured.
type TabExcluder interface {
	// Exclude adds the tab to the exclusion set.
	Exclude(id TabID)
}

// TabState exposes the capture gate's process-scoped bookkeeping.
type TabState interface {
	TabExcluder

	// Records returns a snapshot of the last submitted URL per tab.
	Records() []TabRecord

	// Exclusions returns a snapshot of the excluded tabs.
	Exclusions() []TabID
}
