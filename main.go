// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/bundlerun/bundlerun/cmd/bundlerun"

func main() {
	cmd.Execute()
}
