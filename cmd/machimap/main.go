package main

import (
	"fmt"
	"os"

	"github.com/moritamori/machimap/internal/tui"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "query":
			if err := runQuery(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Println("machimap " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	// No subcommand → launch TUI
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `machimap - shop & restaurant directory browser

Usage:
  machimap                Launch interactive TUI
  machimap query [flags]  Run a headless filter query
  machimap version        Show version

Run 'machimap query --help' for flags.
`)
}
