// The main package for the thanks executable.
package main

import (
	"github.com/JakeFAU/dusty-domains/cmd"
)

func main() {
	cmd.Execute()
}
