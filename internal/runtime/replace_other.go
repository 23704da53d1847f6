// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package runtime

import "os"

const replaceSupported = false

func replace(*Launch) error { return ErrReplaceUnsupported }

// inheritedFiles is empty: descriptors other than stdio cannot be passed.
func inheritedFiles() ([]*os.File, error) { return nil, nil }

func closeInheritedOnExec() error { return nil }
