// Package procsup supervises the shell's two child processes — the
// desktop-shell helper and the rootless X server — as a map pid ->
// cleanup closure, fed by a channel drained on the host's own event-loop
// turn instead of racing shell state from a signal handler.
package procsup

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// Child is a supervised process: its pid, the *exec.Cmd that launched it,
// and the closure to run once it's reaped.
type Child struct {
	Pid     int
	Cmd     *exec.Cmd
	cleanup func(state *os.ProcessState, err error)
}

// Supervisor owns every child this shell has spawned. It is not
// goroutine-safe against concurrent Spawn/Reaped calls by design: the
// shell is single-threaded cooperative and all mutation happens on the
// host's own turn.
type Supervisor struct {
	mu       sync.Mutex
	children map[int]*Child
	reaped   chan reapResult
	log      zerolog.Logger

	pendingMu sync.Mutex
	pending   []reapResult
	ready     chan struct{}

	// Spawning is called with (true) right before a child's exec and
	// (false) once it has either started or failed, so the shell can set a
	// busy cursor.
	Spawning func(bool)
}

type reapResult struct {
	pid   int
	state *os.ProcessState
	err   error
}

func New(log zerolog.Logger) *Supervisor {
	s := &Supervisor{
		children: make(map[int]*Child),
		reaped:   make(chan reapResult, 8),
		ready:    make(chan struct{}, 1),
		log:      log,
	}
	go s.forward()
	return s
}

// forward is the only goroutine that reads s.reaped; it just queues each
// result and pings ready. It never touches s.children and never calls a
// Cleanup, so reap notifications never race the host's own turn.
func (s *Supervisor) forward() {
	for r := range s.reaped {
		s.pendingMu.Lock()
		s.pending = append(s.pending, r)
		s.pendingMu.Unlock()
		select {
		case s.ready <- struct{}{}:
		default:
		}
	}
}

// SpawnOpts configures a child launch.
type SpawnOpts struct {
	Path string
	Args []string
	Env  []string

	// ExtraFiles are passed through to exec.Cmd.ExtraFiles; index 0 lands
	// on fd 3 in the child, matching Go's standard convention. Used to hand
	// a socketpair end to the X server via WAYLAND_SOCKET.
	ExtraFiles []*os.File

	// Rlimit, if non-nil, is applied to the child via prlimit(2) right
	// after it has started (cmd.Start returns only after exec).
	Rlimit *syscall.Rlimit
	RlimitResource int

	// DropCapabilities, if true, strips every capability from the child
	// before exec (the rootless X server needs none).
	DropCapabilities bool

	// Cleanup runs once, when the child is reaped (normally or via death).
	Cleanup func(state *os.ProcessState, err error)
}

// Spawn forks+execs per opts and registers it for reaping. It does not
// wait for the process: the host drains Reaped() on its own turn.
func (s *Supervisor) Spawn(opts SpawnOpts) (*Child, error) {
	if s.Spawning != nil {
		s.Spawning(true)
		defer s.Spawning(false)
	}

	cmd := exec.Command(opts.Path, opts.Args...)
	cmd.Env = opts.Env
	cmd.ExtraFiles = opts.ExtraFiles
	cmd.SysProcAttr = &syscall.SysProcAttr{
		// The child dies with us rather than being re-parented and
		// orphaned if this process crashes mid-session.
		Pdeathsig: syscall.SIGTERM,
	}

	if opts.DropCapabilities {
		if err := dropAllCapabilities(); err != nil {
			s.log.Warn().Err(err).Msg("procsup: failed to pre-check capability drop")
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("procsup: spawn %s: %w", opts.Path, err)
	}

	if opts.Rlimit != nil {
		if err := setChildRlimit(cmd.Process.Pid, opts.RlimitResource, opts.Rlimit); err != nil {
			s.log.Warn().Err(err).Int("pid", cmd.Process.Pid).Msg("procsup: failed to apply rlimit to child")
		}
	}

	child := &Child{Pid: cmd.Process.Pid, Cmd: cmd, cleanup: opts.Cleanup}
	s.mu.Lock()
	s.children[child.Pid] = child
	s.mu.Unlock()

	go s.wait(child)

	return child, nil
}

// wait blocks on the child's exit in its own goroutine (the only blocking
// call in this package) and funnels the result back through a channel so
// the actual state mutation happens on the host's turn, not on this
// goroutine.
func (s *Supervisor) wait(c *Child) {
	state, err := c.Cmd.Process.Wait()
	s.reaped <- reapResult{pid: c.Pid, state: state, err: err}
}

// Reaped returns a receive-only channel the host should select on from its
// event loop; a value means at least one child has exited and Drain has
// work to do. It only signals — it never runs a Cleanup itself.
func (s *Supervisor) Reaped() <-chan struct{} {
	return s.ready
}

// Drain runs the registered Cleanup for every child reaped since the last
// call, synchronously on the caller's goroutine. The host calls this from
// its own turn after Reaped() wakes it, so Cleanup closures that mutate
// shared shell state never race the host's own event loop.
func (s *Supervisor) Drain() {
	s.pendingMu.Lock()
	results := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	for _, r := range results {
		s.mu.Lock()
		c, ok := s.children[r.pid]
		if ok {
			delete(s.children, r.pid)
		}
		s.mu.Unlock()
		if ok && c.cleanup != nil {
			c.cleanup(r.state, r.err)
		}
	}
}

// Signal sends sig to a still-tracked child.
func (s *Supervisor) Signal(pid int, sig os.Signal) error {
	s.mu.Lock()
	c, ok := s.children[pid]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("procsup: no such child pid %d", pid)
	}
	return c.Cmd.Process.Signal(sig)
}
