package main

import (
	"fmt"
	"os"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Handle version flag before subcommand parsing
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-version") {
		fmt.Printf("snaprefd version %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	// Check for subcommand
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	subcommand := os.Args[1]
	switch subcommand {
	case "serve":
		runServe(os.Args[2:])
	case "check":
		runCheck(os.Args[2:])
	case "refresh":
		runRefresh(os.Args[2:])
	case "inprogress":
		runInProgress(os.Args[2:])
	case "version":
		fmt.Printf("snaprefd version %s (built %s, commit %s)\n", version, buildTime, gitCommit)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: snaprefd <command> [options]

Commands:
  serve       Run the reference cache with periodic refresh and metrics endpoint
  check       Classify candidate file paths as referenced or unreferenced
  refresh     Force one cache refresh and print generation statistics
  inprogress  Print the files currently staged under the working directory
  version     Print version information

Run 'snaprefd <command> --help' for more information on a command.`)
}
