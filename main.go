// SPDX-License-Identifier: MPL-2.0

package main

import cmd "kurso/cmd/kurso"

func main() {
	cmd.Execute()
}
