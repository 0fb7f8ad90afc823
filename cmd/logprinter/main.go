// Command logprinter renders mission logs onto the ICS-109 form and prints them.
package main

import (
	"os"

	"github.com/missionpuck/logprinter/cmd/logprinter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
