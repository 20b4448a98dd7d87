package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeIfNot_WritesDefaultsOnce(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, InitializeIfNot(zerolog.Nop()))

	c, err := Read()
	require.NoError(t, err)
	assert.Equal(t, defaults(), *c)

	// A second call must not clobber a modified config.
	c.XServerPath = "/opt/custom/Xwayland"
	require.NoError(t, Write(c))
	require.NoError(t, InitializeIfNot(zerolog.Nop()))

	reread, err := Read()
	require.NoError(t, err)
	assert.Equal(t, "/opt/custom/Xwayland", reread.XServerPath)
}

func TestReadKeybindings_WritesDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	kb, err := ReadKeybindings()
	require.NoError(t, err)
	assert.Equal(t, defaultKeybindings(), *kb)
	assert.True(t, kb.ClickToActivate)
	assert.Equal(t, 1, kb.Move.Button)
	assert.Equal(t, 3, kb.Resize.Button)
}
