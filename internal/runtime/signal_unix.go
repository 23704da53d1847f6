// SPDX-License-Identifier: MPL-2.0

//go:build unix

package runtime

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// maxSignal is the highest signal number tracked in a startup mask.
const maxSignal = 64

var (
	// reservedSignals are never handled, ignored, or reset by the engine.
	reservedSignals = []os.Signal{
		unix.SIGCHLD, unix.SIGPIPE, unix.SIGSEGV, unix.SIGBUS, unix.SIGILL,
		unix.SIGFPE, unix.SIGVTALRM, unix.SIGKILL, unix.SIGSTOP,
	}

	// inheritableSignals are checked with signal.Ignored when the startup
	// mask is unavailable.
	inheritableSignals = []os.Signal{
		unix.SIGHUP, unix.SIGINT, unix.SIGQUIT, unix.SIGTERM, unix.SIGUSR1,
		unix.SIGUSR2, unix.SIGALRM, unix.SIGTSTP, unix.SIGTTIN, unix.SIGTTOU,
		unix.SIGWINCH, unix.SIGXCPU, unix.SIGXFSZ, unix.SIGIO, unix.SIGSYS,
	}
)

// inheritedIgnored returns the non-reserved signals that were ignored when
// the process started.
func inheritedIgnored() []os.Signal {
	if !startupMaskAvailable {
		return ignoredNow()
	}
	mask := startupIgnoredMask()
	var sigs []os.Signal
	for n := 1; n <= maxSignal; n++ {
		if mask&(1<<uint(n-1)) == 0 {
			continue
		}
		if sig := syscall.Signal(n); !isReserved(sig) {
			sigs = append(sigs, sig)
		}
	}
	return sigs
}

// ignoredNow is the fallback without a startup mask. The runtime keeps an
// inherited SIG_IGN only for SIGHUP and SIGINT, so others are missed.
func ignoredNow() []os.Signal {
	var sigs []os.Signal
	for _, sig := range inheritableSignals {
		if signal.Ignored(sig) {
			sigs = append(sigs, sig)
		}
	}
	return sigs
}
