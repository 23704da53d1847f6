// SPDX-License-Identifier: MPL-2.0

//go:build unix && !cgo

package runtime

const startupMaskAvailable = false

func startupIgnoredMask() uint64 { return 0 }
