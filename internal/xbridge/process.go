package xbridge

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/andr2000/weston-shell/internal/procsup"
)

// ServerConfig controls how the rootless X server child is launched.
type ServerConfig struct {
	// Path to the X server binary, e.g. "/usr/lib/xorg/Xwayland".
	Path string
	// ExtraArgs are appended after the fixed, mandatory argv below.
	ExtraArgs []string
	// MaxOpenFiles, if non-zero, is applied to the child via prlimit(2)
	// right after it has started.
	MaxOpenFiles uint64
	// DisplayFD, if non-nil, receives the resolved display number once the
	// lockfile is acquired.
	DisplayFD io.Writer
}

// LaunchServer forks+execs the X server for display n, passing sock as its
// WAYLAND_SOCKET fd Startup. The caller has already bound
// and is holding the listening display sockets; LaunchServer does not touch
// them, only the server's half of the dedicated socketpair.
//
// onExit, if non-nil, runs after the exit is logged, once the child is
// reaped — used to re-arm the bridge's listening sockets and tear down any
// attached WM.
func LaunchServer(sup *procsup.Supervisor, cfg ServerConfig, n int, sock *os.File, log zerolog.Logger, onExit func()) (*procsup.Child, error) {
	args := []string{
		fmt.Sprintf(":%d", n),
		"-wayland",
		"-rootless",
		"-retro",
		"-logfile", fmt.Sprintf("/tmp/x-log-%d", n),
		"-nolisten", "all",
		"-terminate",
	}
	args = append(args, cfg.ExtraArgs...)

	opts := procsup.SpawnOpts{
		Path:             cfg.Path,
		Args:             args,
		Env:              []string{"WAYLAND_SOCKET=3"},
		ExtraFiles:       []*os.File{sock},
		DropCapabilities: true,
		Cleanup: func(state *os.ProcessState, err error) {
			if err != nil {
				log.Warn().Err(err).Int("display", n).Msg("xbridge: X server exited with error")
			} else {
				log.Info().Int("display", n).Str("state", state.String()).Msg("xbridge: X server exited")
			}
			if onExit != nil {
				onExit()
			}
		},
	}
	if cfg.MaxOpenFiles != 0 {
		opts.Rlimit = &syscall.Rlimit{Cur: cfg.MaxOpenFiles, Max: cfg.MaxOpenFiles}
		opts.RlimitResource = rlimitNoFile
	}

	child, err := sup.Spawn(opts)
	if err != nil {
		return nil, fmt.Errorf("xbridge: launch X server on display %d: %w", n, err)
	}

	if cfg.DisplayFD != nil {
		fmt.Fprintf(cfg.DisplayFD, "%d\n", n)
	}

	log.Info().Int("display", n).Int("pid", child.Pid).Msg("xbridge: X server launched")
	return child, nil
}
