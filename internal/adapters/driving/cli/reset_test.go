package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetCmd(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		input       string
		existed     bool
		wantCleared bool
		wantOutput  string
	}{
		{"yes flag", []string{"reset", "--yes"}, "", true, true, "Database cleared."},
		{"already empty", []string{"reset", "-y"}, "", false, true, "Database already empty."},
		{"confirmed", []string{"reset"}, "y\n", true, true, "Database cleared."},
		{"confirmed long form", []string{"reset"}, "YES\n", true, true, "Database cleared."},
		{"declined", []string{"reset"}, "n\n", true, false, "Cancelled."},
		{"no input", []string{"reset"}, "", true, false, "Cancelled."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()
			ts.index.existed = tt.existed

			out, err := executeWithInput(tt.input, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCleared, ts.index.cleared)
			assert.Contains(t, out, tt.wantOutput)
		})
	}
}

func TestResetCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = errors.New("database is locked")

	_, err := execute("reset", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestResetCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("reset", "extra")
	require.Error(t, err)
}
