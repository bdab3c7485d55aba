package recall_test

import (
	"testing"

	"github.com/fwojciec/recall"
	"github.com/stretchr/testify/assert"
)

func TestEventType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "navigation-completed", recall.EventNavigationCompleted.String())
	assert.Equal(t, "tab-closed", recall.EventTabClosed.String())
	assert.Equal(t, "tab-opened-by-search", recall.EventTabOpenedBySearch.String())
	assert.Equal(t, "unknown", recall.EventType(0).String())
}

func TestEvent_Signal(t *testing.T) {
	t.Parallel()

	e := recall.Event{Type: recall.EventNavigationCompleted, TabID: "T1", URL: "https://example.com/a"}

	assert.Equal(t, recall.NavigationSignal{TabID: "T1", URL: "https://example.com/a"}, e.Signal())
}
