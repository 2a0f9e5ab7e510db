package cmd

import (
	"errors"
	"fmt"
	"testing"

	"teamleader-mcp/internal/oauth"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "generic error",
			err:  errors.New("boom"),
			want: ExitCodeError,
		},
		{
			name: "auth required",
			err:  errAuthRequired,
			want: ExitCodeAuthRequired,
		},
		{
			name: "wrapped auth required",
			err:  fmt.Errorf("no credential available: %w", errAuthRequired),
			want: ExitCodeAuthRequired,
		},
		{
			name: "reauth required from refresh",
			err:  &oauth.ReauthRequiredError{Err: errors.New("invalid_grant")},
			want: ExitCodeAuthRequired,
		},
		{
			name: "interactive flow failed",
			err:  &authFailedError{err: errors.New("state mismatch")},
			want: ExitCodeAuthFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}
