package queue

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReceiver(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "valid_config",
			config: Config{Addr: "localhost:6379", Queue: "crm-mutations"},
		},
		{
			name:   "defaults_addr",
			config: Config{Queue: "crm-mutations"},
		},
		{
			name:        "missing_queue",
			config:      Config{Addr: "localhost:6379"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receiver, err := NewReceiver(tt.config, slog.Default())
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "queue name is required")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "localhost:6379", receiver.config.Addr)
		})
	}
}
