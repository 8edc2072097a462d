// Command jobtailor runs the wizard's building blocks against local files and
// maintains the session store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobtailor/internal/bootstrap"
)

var rootCmd = &cobra.Command{
	Use:           "jobtailor",
	Short:         "JobTailor offline tools",
	Long:          "Import résumés, score them against job descriptions, generate tailored documents and manage the session store from the command line.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newLLM is swapped in tests.
var newLLM = bootstrap.NewLLM

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
