package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gerunddev/mdsite/internal/markdown"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "html":
		handleHTML(os.Args[2:])
	case "blocks":
		handleBlocks(os.Args[2:])
	case "title":
		handleTitle(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("md2html v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := `md2html - Convert a single markdown document to HTML

Usage:
  md2html <command> [file]

Reads from stdin when no file is given or the file is "-".

Commands:
  html      Print the HTML fragment for the document
  blocks    Print each block with its detected type
  title     Print the document title (first "# " heading)
  version   Show version information
  help      Show this help message

Examples:
  md2html html content/index.md
  cat notes.md | md2html blocks
`
	fmt.Print(usage)
}

func readInput(args []string) string {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return string(data)
}

func handleHTML(args []string) {
	html, err := markdown.ToHTML(readInput(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(html)
}

func handleBlocks(args []string) {
	for i, block := range markdown.Segment(readInput(args)) {
		kind := markdown.Classify(block)
		label := kind.Type.String()
		if kind.Type == markdown.Heading {
			label = fmt.Sprintf("%s(%d)", label, kind.Level)
		}
		fmt.Printf("--- block %d: %s\n%s\n", i+1, label, block)
	}
}

func handleTitle(args []string) {
	title, err := markdown.ExtractTitle(readInput(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(title)
}
