package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertModuleLoaded checks the log output for the completion line of a
// top-level load.
func AssertModuleLoaded(t *testing.T, result *HarnessResult, name string) {
	t.Helper()

	expected := fmt.Sprintf("msg=\"Module loaded.\" run_id=%s module=%s", result.App.RunID(), name)
	require.True(t,
		strings.Contains(result.LogOutput, expected),
		"expected load of module '%s' was not found in logs", name,
	)
}
