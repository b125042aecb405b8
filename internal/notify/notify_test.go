package notify_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportportal/portal-client/internal/mocks"
	"github.com/supportportal/portal-client/internal/notify"
	"github.com/supportportal/portal-client/pkg/console"
)

func TestNotifyPassesMessageThrough(t *testing.T) {
	sink := mocks.NewNotificationSink()
	router := notify.NewRouter(sink)

	router.Notify(notify.Error, "Invalid credentials")

	require.Len(t, sink.Calls, 1)
	assert.Equal(t, notify.Error, sink.Calls[0].Severity)
	assert.Equal(t, "Invalid credentials", sink.Calls[0].Message)
}

func TestNotifyEmptyMessageFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		severity notify.Severity
	}{
		{"error with empty message", notify.Error},
		{"warning with empty message", notify.Warning},
		{"success with empty message", notify.Success},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := mocks.NewNotificationSink()
			router := notify.NewRouter(sink)

			router.Notify(tt.severity, "")

			require.Len(t, sink.Calls, 1)
			assert.Equal(t, notify.FallbackMessage, sink.Calls[0].Message)
		})
	}
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	console.SetWriter(&buf)
	defer console.SetWriter(os.Stdout)

	sink := notify.ConsoleSink{}

	buf.Reset()
	sink.Notify(notify.Success, "3 user(s) loaded successfully.")
	assert.Contains(t, buf.String(), "OK")
	assert.Contains(t, buf.String(), "3 user(s) loaded successfully.")

	buf.Reset()
	sink.Notify(notify.Error, "boom")
	assert.Contains(t, buf.String(), "ERROR")

	buf.Reset()
	sink.Notify(notify.Warning, "careful")
	assert.Contains(t, buf.String(), "WARN")

	buf.Reset()
	sink.Notify(notify.Info, "fyi")
	assert.Contains(t, buf.String(), "INFO")
}
