package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitServer_WaitsForDrainAfterListenerCloses(t *testing.T) {
	serveErr := make(chan error, 1)
	wait := make(chan int, 1)
	done := make(chan error, 1)

	serveErr <- nil
	go func() { done <- awaitServer(serveErr, wait) }()

	select {
	case err := <-done:
		t.Fatalf("returned before shutdown finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	wait <- 0
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("did not return after shutdown finished")
	}
}

func TestAwaitServer(t *testing.T) {
	tests := []struct {
		name           string
		serveErr       error
		serveFirst     bool
		code           int
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:       "serve failure returns immediately",
			serveErr:   errors.New("accept failed"),
			serveFirst: true,
			errorAssertion: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "accept failed")
			},
		},
		{
			name: "clean shutdown",
			code: 0,
			errorAssertion: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "shutdown timeout",
			code: 1,
			errorAssertion: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "exit code 1")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serveErr := make(chan error, 1)
			wait := make(chan int, 1)
			if tt.serveFirst {
				serveErr <- tt.serveErr
			} else {
				wait <- tt.code
			}
			tt.errorAssertion(t, awaitServer(serveErr, wait))
		})
	}
}
