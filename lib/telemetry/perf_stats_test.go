package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsBrowserProcess(t *testing.T) {
	require.True(t, isBrowserProcess("chrome"))
	require.True(t, isBrowserProcess("Google Chrome Helper"))
	require.True(t, isBrowserProcess("chromium-browser"))
	require.False(t, isBrowserProcess("attendance-server"))
}

func TestRecordPerfStats(t *testing.T) {
	// exercised against the no-op global provider
	recordPerfStats(context.Background())
}
