package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/mdsite/internal/commands"
	"github.com/gerunddev/mdsite/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build":
		commands.Build(os.Args[2:])
	case "watch":
		commands.Watch(os.Args[2:])
	case "stop":
		commands.Stop()
	case "status":
		commands.Status(os.Args[2:])
	case "diff":
		commands.Diff(os.Args[2:])
	case "preview":
		commands.Preview(os.Args[2:])
	case "render":
		commands.Render(os.Args[2:])
	case "init":
		commands.Init(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("mdsite v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`mdsite - Static site generator for a small markdown dialect

Usage:
  mdsite <command> [options]

Commands:
  build       Generate the site (--incremental, --fail-fast)
  watch       Rebuild on an interval (--interval 2s, --detach)
  stop        Stop a background watcher
  status      Show which pages the next build would regenerate
  diff        Diff a page's current output against a fresh render (--plain)
  preview     Render a markdown page in the terminal
  render      Print a page's HTML fragment to stdout
  init        Write the default config and a starter site (--force)
  version     Show version information
  help        Show this help message

Options:
  --content DIR    Content directory
  --public DIR     Output directory
  --template FILE  Page template
  --base PATH      Base path for root-relative links (default "/")
  --workers N      Number of pages generated in parallel

Examples:
  mdsite init
  mdsite build --base /blog/
  mdsite build --incremental
  mdsite watch --interval 5s --detach
  mdsite diff content/index.md
  mdsite render content/index.md

Configuration:
  Config file:   %s
  Manifest file: %s
`, config.ConfigPath(), config.ManifestPath())
	fmt.Print(usage)
}
