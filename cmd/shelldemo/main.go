// Command shelldemo wires internal/config, internal/logx, internal/procsup,
// internal/xbridge, and the root shell package together the way a real
// compositor plugin host would: parse flags, load config, build the
// logger, then hand control to the long-lived subsystems.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	shell "github.com/andr2000/weston-shell"
	"github.com/andr2000/weston-shell/internal/config"
	"github.com/andr2000/weston-shell/internal/logx"
	"github.com/andr2000/weston-shell/internal/model"
	"github.com/andr2000/weston-shell/internal/procsup"
	"github.com/andr2000/weston-shell/internal/xbridge"
)

type cliOpts struct {
	verbose bool
	quiet   bool
	noX     bool
}

func parseCLIOpts() cliOpts {
	var opt cliOpts
	flag.BoolVar(&opt.verbose, "v", false, "Verbose output (print logs to stderr)")
	flag.BoolVar(&opt.quiet, "q", false, "Only print warnings and errors")
	flag.BoolVar(&opt.noX, "no-xwayland", false, "Don't start the legacy-X11 bridge")
	flag.Parse()
	return opt
}

// noHelper satisfies lock.Helper for a host that hasn't launched the
// desktop-shell helper process yet.
type noHelper struct{}

func (noHelper) Alive() bool             { return false }
func (noHelper) SendPrepareLockSurface() {}

// noDevices satisfies lock.Devices for a host with no input devices wired up.
type noDevices struct{}

func (noDevices) Each(func(model.InputDevice)) {}

// demoHost satisfies xbridge.Host by handing every X window its own bare
// native surface and activating it through the shell on map.
type demoHost struct {
	shell   *shell.Shell
	surface map[uint32]*model.Surface
}

func newDemoHost(sh *shell.Shell) *demoHost {
	return &demoHost{shell: sh, surface: make(map[uint32]*model.Surface)}
}

func (h *demoHost) NewXSurface(xid uint32) *model.Surface {
	if s, ok := h.surface[xid]; ok {
		return s
	}
	s := &model.Surface{XID: xid}
	h.surface[xid] = s
	return s
}

func (h *demoHost) Activate(s *model.Surface) {
	h.shell.Policy.Visible.PushFront(s)
}

func main() {
	opt := parseCLIOpts()
	log := logx.New(logx.Options{Verbose: opt.verbose, Quiet: opt.quiet})

	if err := config.InitializeIfNot(log); err != nil {
		log.Fatal().Err(err).Msg("shelldemo: could not initialize config")
	}
	cfg, err := config.Read()
	if err != nil {
		log.Fatal().Err(err).Msg("shelldemo: could not read config")
	}
	kb, err := config.ReadKeybindings()
	if err != nil {
		log.Fatal().Err(err).Msg("shelldemo: could not read keybindings")
	}
	log.Info().Interface("move", kb.Move).Interface("resize", kb.Resize).
		Msg("shelldemo: loaded keybindings")

	sh := shell.New(log, noHelper{}, noDevices{}, nil)

	idleTimeout := time.Duration(cfg.LockIdleTimeoutSeconds) * time.Second
	sh.ArmIdleLock(idleTimeout)
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	sup := procsup.New(log)
	if !opt.noX {
		bridge, err := xbridge.Start(xbridge.Config{
			Server: xbridge.ServerConfig{
				Path:         cfg.XServerPath,
				MaxOpenFiles: cfg.MaxOpenFiles,
			},
			StartAt: cfg.DisplayStart,
			Sup:     sup,
			Host:    newDemoHost(sh),
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("shelldemo: legacy-X11 bridge unavailable, continuing without it")
		} else {
			sh.Bridge = bridge
			defer bridge.Stop()
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	log.Info().Msg("shelldemo: ready")
	for {
		select {
		case <-sup.Reaped():
			sup.Drain()
		case <-idleTimer.C:
			sh.OnIdle()
			idleTimer.Reset(idleTimeout)
		case <-sig:
			log.Info().Msg("shelldemo: shutting down")
			return
		}
	}
}
