// Package main is the entry point for the hordes sidecar daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hordesd",
	Short: "Hordes arena sidecar",
	Long:  `hordesd runs the wave-survival arena core as a sidecar: the game engine connects over a websocket and streams player events in, and the daemon drives arena lifecycle, wave spawning, cooldowns and statistics.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
