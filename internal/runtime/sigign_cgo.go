// SPDX-License-Identifier: MPL-2.0

//go:build unix && cgo

package runtime

/*
#include <signal.h>
#include <string.h>

static unsigned long long bundlerun_startup_ignored;

// Runs before the Go runtime installs its signal handlers.
__attribute__((constructor)) static void bundlerun_capture_ignored(void) {
	int sig;
	for (sig = 1; sig < NSIG && sig <= 64; sig++) {
		struct sigaction sa;
		memset(&sa, 0, sizeof sa);
		if (sigaction(sig, NULL, &sa) == 0 && sa.sa_handler == SIG_IGN) {
			bundlerun_startup_ignored |= 1ULL << (sig - 1);
		}
	}
}

static unsigned long long bundlerun_ignored_mask(void) {
	return bundlerun_startup_ignored;
}
*/
import "C"

const startupMaskAvailable = true

// startupIgnoredMask has bit n-1 set when signal n was ignored at exec.
func startupIgnoredMask() uint64 {
	return uint64(C.bundlerun_ignored_mask())
}
