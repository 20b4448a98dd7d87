package xbridge

import (
	"net"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/andr2000/weston-shell/internal/procsup"
)

// Config bundles everything Bridge needs to bring up a display.
type Config struct {
	Server   ServerConfig
	StartAt  int // first display number to try, e.g. 0
	Sup      *procsup.Supervisor
	Host     Host
}

// Bridge owns one X display's full lifecycle: lockfile, listening sockets,
// server process, and — once a client binds the xserver interface and the
// server is confirmed up — the WM connection. It implements
// end to end: "install readable sources on both; on first connection,
// fork+exec the X server ... remove the listening sources from the loop
// while the server runs; on server death, re-add them and ... tear [the
// WM] down."
type Bridge struct {
	cfg     Config
	log     zerolog.Logger
	n       int
	lockRm  func()
	sockets *DisplaySockets
	child   *procsup.Child
	wm      *WM

	acceptDone chan struct{}
}

// Start acquires a free display number, binds both listening sockets, and
// begins watching them for the first connection.
func Start(cfg Config, log zerolog.Logger) (*Bridge, error) {
	n, lockRm, err := AcquireDisplay(cfg.StartAt)
	if err != nil {
		return nil, err
	}
	sockets, err := BindDisplaySockets(n)
	if err != nil {
		lockRm()
		return nil, err
	}

	b := &Bridge{
		cfg:        cfg,
		log:        log.With().Int("display", n).Logger(),
		n:          n,
		lockRm:     lockRm,
		sockets:    sockets,
		acceptDone: make(chan struct{}, 1),
	}
	b.watchForFirstConnection()
	return b, nil
}

// watchForFirstConnection accepts exactly one connection on whichever
// socket is dialed first, then launches the server; a second accept
// attempt races in a second goroutine against whichever listener wins,
// but only the first connection ever triggers the server launch.
func (b *Bridge) watchForFirstConnection() {
	accept := func(ln *net.UnixListener) {
		conn, err := ln.AcceptUnix()
		if err != nil {
			return
		}
		conn.Close() // the server itself will be the real peer; we only needed the knock
		select {
		case b.acceptDone <- struct{}{}:
			b.onFirstConnection()
		default:
		}
	}
	go accept(b.sockets.Abstract)
	go accept(b.sockets.Filesystem)
}

func (b *Bridge) onFirstConnection() {
	ourEnd, serverEnd, err := socketpair()
	if err != nil {
		b.log.Error().Err(err).Msg("xbridge: failed to create WAYLAND_SOCKET pair")
		return
	}
	defer ourEnd.Close()

	child, err := LaunchServer(b.cfg.Sup, b.cfg.Server, b.n, serverEnd, b.log, b.OnServerExit)
	serverEnd.Close()
	if err != nil {
		b.log.Error().Err(err).Msg("xbridge: failed to launch X server")
		return
	}
	b.child = child
}

// AttachWM completes "WM attachment" once the shell has
// learned (via its own xserver-interface bind callback) that the launched
// X client is ready to be managed.
func (b *Bridge) AttachWM() error {
	wm, err := AttachWM(b.n, b.cfg.Host, b.log)
	if err != nil {
		return err
	}
	b.wm = wm
	return nil
}

// WM returns the attached WM connection, or nil before AttachWM succeeds.
func (b *Bridge) WM() *WM { return b.wm }

// Display is the resolved display number (the "N" in ":N").
func (b *Bridge) Display() int { return b.n }

// Stop tears everything down: WM, server child (via SIGTERM), sockets,
// lockfile — in that order, matching "on server death ... tear the WM
// down" but run proactively for a clean shutdown instead of waiting for
// the child to die on its own.
func (b *Bridge) Stop() {
	if b.wm != nil {
		b.wm.Close()
		b.wm = nil
	}
	if b.child != nil {
		if err := b.cfg.Sup.Signal(b.child.Pid, syscall.SIGTERM); err != nil {
			b.log.Debug().Err(err).Msg("xbridge: X server already gone")
		}
	}
	if b.sockets != nil {
		b.sockets.Close()
	}
	if b.lockRm != nil {
		b.lockRm()
	}
}

// OnServerExit re-arms the listening sockets for a fresh first connection
// and tears down the WM. onFirstConnection passes it to LaunchServer as
// onExit, so it runs from the server child's Cleanup when the host calls
// procsup.Supervisor.Drain.
func (b *Bridge) OnServerExit() {
	if b.wm != nil {
		b.wm.Close()
		b.wm = nil
	}
	b.child = nil
	select {
	case <-b.acceptDone:
	default:
	}
	b.watchForFirstConnection()
}
