// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package runtime

import (
	"os"
	"os/signal"
)

var (
	reservedSignals = []os.Signal{os.Kill}

	inheritableSignals = []os.Signal{os.Interrupt}
)

func inheritedIgnored() []os.Signal {
	var sigs []os.Signal
	for _, sig := range inheritableSignals {
		if signal.Ignored(sig) {
			sigs = append(sigs, sig)
		}
	}
	return sigs
}
