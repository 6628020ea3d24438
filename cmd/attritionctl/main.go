// Package main provides attritionctl, the admin CLI of the attrition API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "attritionctl",
	Short:         "Futurisys attrition API admin tool",
	Long:          "attritionctl manages the prediction database and the model artifact, and scores records offline.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
