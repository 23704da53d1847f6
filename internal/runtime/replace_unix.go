// SPDX-License-Identifier: MPL-2.0

//go:build unix

package runtime

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"golang.org/x/sys/unix"
)

const replaceSupported = true

// fdDirs list the open descriptors of the current process.
var fdDirs = []string{"/proc/self/fd", "/dev/fd"}

// replace executes the command in place of the current process image. It
// only returns on failure.
func replace(l *Launch) error {
	path, err := executable(l)
	if err != nil {
		return err
	}
	if l.WorkDir != "" {
		if err := os.Chdir(l.WorkDir); err != nil {
			return fmt.Errorf("failed to change directory: %w", err)
		}
	}
	if !l.KeepFileDescriptors {
		if err := closeInheritedOnExec(); err != nil {
			return err
		}
	}

	restoreIgnored()

	argv := l.Command.Argv()
	env := l.Env.Slice()
	err = unix.Exec(path, argv, env)
	if errors.Is(err, unix.ENOEXEC) {
		// No interpreter line: run it with the shell, as execvp does.
		err = unix.Exec("/bin/sh", append([]string{"sh", path}, argv[1:]...), env)
	}
	return &os.PathError{Op: "exec", Path: path, Err: err}
}

// closeInheritedOnExec marks every descriptor above stderr close-on-exec.
func closeInheritedOnExec() error {
	fds, err := openDescriptors()
	if err != nil {
		return err
	}
	for _, fd := range fds {
		unix.CloseOnExec(fd)
	}
	return nil
}

// inheritedFiles returns the descriptors above stderr that would survive an
// exec, indexed for exec.Cmd.ExtraFiles so each keeps its number.
func inheritedFiles() ([]*os.File, error) {
	fds, err := openDescriptors()
	if err != nil {
		return nil, err
	}
	var files []*os.File
	for _, fd := range fds {
		flags, fcntlErr := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
		if fcntlErr != nil || flags&unix.FD_CLOEXEC != 0 {
			continue
		}
		for len(files) < fd-2 {
			files = append(files, nil)
		}
		files[fd-3] = os.NewFile(uintptr(fd), "fd"+strconv.Itoa(fd))
	}
	return files, nil
}

// openDescriptors lists the open descriptors above stderr in ascending order.
func openDescriptors() ([]int, error) {
	var lastErr error
	for _, dir := range fdDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			lastErr = err
			continue
		}
		fds := make([]int, 0, len(entries))
		for _, e := range entries {
			fd, convErr := strconv.Atoi(e.Name())
			if convErr != nil || fd <= 2 {
				continue
			}
			// the listing's own descriptor is closed by now
			if _, statErr := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); statErr != nil {
				continue
			}
			fds = append(fds, fd)
		}
		slices.Sort(fds)
		return fds, nil
	}
	return nil, fmt.Errorf("failed to list open file descriptors: %w", lastErr)
}
