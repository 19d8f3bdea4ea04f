// SPDX-License-Identifier: MPL-2.0

package main

import cmd "conformat/cmd/conformat"

func main() {
	cmd.Execute()
}
