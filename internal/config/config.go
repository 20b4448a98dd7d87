// Package config reads and writes the shell's TOML configuration file,
// following a read/write/initialize-if-not pattern for shell process
// paths and display-search parameters.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const fileName = "shell.toml"

// Config is the shell's process- and display-level configuration.
type Config struct {
	// XServerPath is the rootless X server binary, invoked
	// as "{XServerPath} :{N} -wayland -rootless -retro -logfile
	// /tmp/x-log-{N} -nolisten all -terminate".
	XServerPath string
	// LibexecDir holds the compositor's private helper binaries.
	LibexecDir string
	// HelperBinary is the desktop-shell helper's executable name, resolved
	// relative to LibexecDir.
	HelperBinary string
	// DisplayStart is the first X display number AcquireDisplay tries.
	DisplayStart int
	// MaxOpenFiles, if nonzero, is applied as the X server child's
	// RLIMIT_NOFILE.
	MaxOpenFiles uint64
	// LockIdleTimeoutSeconds is how long the host's idle timer should wait
	// before calling Shell.OnIdle.
	LockIdleTimeoutSeconds int
}

func defaults() Config {
	return Config{
		XServerPath:            "/usr/lib/xorg/Xwayland",
		LibexecDir:             "/usr/libexec",
		HelperBinary:           "wayland-desktop-shell",
		DisplayStart:           0,
		MaxOpenFiles:           1024,
		LockIdleTimeoutSeconds: 300,
	}
}

func dir() string {
	return filepath.Join(xdgOrFallback("XDG_CONFIG_HOME", filepath.Join(os.Getenv("HOME"), ".config")), "weston-shell")
}

func path() string {
	return filepath.Join(dir(), fileName)
}

// InitializeIfNot writes the default config to disk the first time the
// shell runs.
func InitializeIfNot(log zerolog.Logger) error {
	log.Debug().Msg("config: checking whether config needs to be initialized")

	configDir := dir()
	if ok, err := exists(configDir); err != nil {
		return fmt.Errorf("config: stat config dir: %w", err)
	} else if !ok {
		if err := os.MkdirAll(configDir, 0700); err != nil {
			return fmt.Errorf("config: create config dir: %w", err)
		}
	}

	p := path()
	if ok, err := exists(p); err != nil {
		return fmt.Errorf("config: stat config file: %w", err)
	} else if !ok {
		log.Info().Str("path", p).Msg("config: writing default config")
		d := defaults()
		return Write(&d)
	}
	return nil
}

// Read loads the config file, returning an error rather than calling
// log.Fatalf so the caller decides how fatal a bad config file is.
func Read() (*Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path(), &c); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path(), err)
	}
	return &c, nil
}

// Write serializes c as TOML to the config path.
func Write(c *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path(), err)
	}
	return nil
}

func exists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func xdgOrFallback(xdg, fallback string) string {
	if dir := os.Getenv(xdg); dir != "" {
		if ok, err := exists(dir); ok && err == nil {
			return dir
		}
	}
	return fallback
}
