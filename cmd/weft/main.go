// cmd/weft/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"weft/cmd/weft/commands"
)

var commandAliases = map[string]string{
	"b": "build",
	"c": "check",
	"v": "version",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "version":
		commands.VersionCommand(args[1:])
	case "build":
		if err := commands.BuildCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "check":
		if err := commands.CheckCommand(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`weft - dependently-typed IR core

Usage:
  weft build <script>   construct a script and print its result node
  weft check <script>   construct a script and verify the whole graph
  weft version           print the CLI version

Aliases: b=build, c=check, v=version`)
}
