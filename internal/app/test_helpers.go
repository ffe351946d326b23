package app

import (
	"context"
	"os"
	"testing"

	"github.com/specialistvlad/graphtools/internal/hcl_adapter"
	"github.com/specialistvlad/graphtools/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest creates a new app instance for system testing. Logs go to
// the returned buffer at debug level and are printed when
// GRAPHTOOLS_TEST_LOGS is "true".
func SetupAppTest(t *testing.T, appConfig *Config, opts ...Option) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp, err := NewApp(context.Background(), logBuffer, appConfig, hcl_adapter.NewLoader(), opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testApp.Close(context.Background())
		if os.Getenv("GRAPHTOOLS_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
