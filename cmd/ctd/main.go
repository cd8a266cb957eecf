package main

import (
	"fmt"
	"os"

	"github.com/agiangrant/toolkit"
	"github.com/agiangrant/toolkit/cmd/ctd/commands"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "init":
		err = commands.Init(args)
	case "replay":
		err = commands.Replay(args)
	case "visual":
		err = commands.Visual(args)
	case "version", "-v", "--version":
		fmt.Printf("ctd version %s\n", toolkit.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ctd - text and visual toolkit CLI

Usage: ctd <command> [options]

Commands:
  init      Write a default toolkit.toml
  replay    Drive a headless text field from a TOML script
  visual    Build a visual from a TOML property map and wait until it is ready
  version   Print version information
  help      Show this help message

Examples:
  ctd init                          Create toolkit.toml in the current directory
  ctd replay -script edit.toml      Replay edit.toml and print the field after each step
  ctd visual -props photo.toml      Load the visual described by photo.toml

Configuration:
  replay and visual read toolkit.toml from the current directory when it
  exists. Use -config to point at another file.`)
}
