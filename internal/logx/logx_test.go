package logx

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultIsDisabled(t *testing.T) {
	log := New(Options{})
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestNew_VerboseIsDebug(t *testing.T) {
	log := New(Options{Verbose: true})
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestNew_QuietOverridesVerbose(t *testing.T) {
	log := New(Options{Verbose: true, Quiet: true})
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}
