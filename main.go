// ABOUTME: Entry point for the nextstep CLI
// ABOUTME: Terminal client for swiping through job recommendations

package main

import (
	"fmt"
	"os"

	"github.com/ParthhMahajann/Nextstep-AI/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
