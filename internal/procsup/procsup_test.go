package procsup

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAndReap(t *testing.T) {
	sup := New(zerolog.Nop())
	reaped := sup.Reaped()

	var cleaned bool
	_, err := sup.Spawn(SpawnOpts{
		Path: "/bin/true",
		Cleanup: func(state *os.ProcessState, err error) {
			cleaned = true
		},
	})
	require.NoError(t, err)

	select {
	case <-reaped:
	case <-time.After(5 * time.Second):
		t.Fatal("child was never reaped")
	}

	// Cleanup must not have run yet: Reaped() only signals, Drain() runs
	// the registered closures on the caller's own goroutine.
	assert.False(t, cleaned, "cleanup ran before Drain")
	sup.Drain()
	assert.True(t, cleaned, "cleanup never ran")
}

func TestSignalUnknownPidErrors(t *testing.T) {
	sup := New(zerolog.Nop())
	err := sup.Signal(999999, os.Interrupt)
	assert.Error(t, err)
}
