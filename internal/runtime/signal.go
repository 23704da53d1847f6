// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"log/slog"
	"os"
	"os/signal"
	"slices"
)

// Disposition is the engine's signal handling while a child or a loaded
// script runs. It is acquired before the launch and released after it ends.
// Only the interrupt signal is intercepted; it is delivered to the target.
type Disposition struct {
	ch      chan os.Signal
	done    chan struct{}
	targets chan func(os.Signal)
	logger  *slog.Logger
}

// AcquireDisposition re-asserts the signals the engine was started with
// ignored, so children inherit them, and starts intercepting the interrupt
// signal unless it was ignored too.
func AcquireDisposition(logger *slog.Logger) *Disposition {
	ignored := restoreIgnored()

	d := &Disposition{
		done:    make(chan struct{}),
		targets: make(chan func(os.Signal), 1),
		logger:  logger,
	}
	if !slices.Contains(ignored, os.Interrupt) && !signal.Ignored(os.Interrupt) {
		d.ch = make(chan os.Signal, 1)
		signal.Notify(d.ch, os.Interrupt)
	}
	go d.forward()
	return d
}

// Started hands the running child to the disposition.
func (d *Disposition) Started(p *os.Process) {
	d.Deliver(func(sig os.Signal) {
		d.logger.Debug("forwarding signal", "signal", sig, "pid", p.Pid)
		if err := p.Signal(sig); err != nil {
			d.logger.Debug("signal forwarding failed", "error", err)
		}
	})
}

// Deliver sets the function intercepted signals are handed to. It may be
// called once.
func (d *Disposition) Deliver(fn func(os.Signal)) {
	d.targets <- fn
}

// Release stops intercepting signals.
func (d *Disposition) Release() {
	if d.ch != nil {
		signal.Stop(d.ch)
	}
	close(d.done)
}

func (d *Disposition) forward() {
	var deliver func(os.Signal)
	select {
	case deliver = <-d.targets:
	case <-d.done:
		return
	}
	for {
		select {
		case sig := <-d.ch:
			deliver(sig)
		case <-d.done:
			return
		}
	}
}

// restoreIgnored ignores again every signal that was ignored when the
// process started and returns them. The Go runtime installs handlers for
// most of those, which exec would reset to the default action.
func restoreIgnored() []os.Signal {
	sigs := inheritedIgnored()
	if len(sigs) > 0 {
		signal.Ignore(sigs...)
	}
	return sigs
}

// isReserved reports whether sig is one the engine never touches.
func isReserved(sig os.Signal) bool {
	return slices.Contains(reservedSignals, sig)
}
