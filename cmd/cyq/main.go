package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/corvidgraph/boltwire/src/driver"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "run":
		err = runCommand(args)
	case "ping":
		err = pingCommand(args)
	case "version", "--version", "-v":
		err = versionCommand()
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.Error() != "" {
				fmt.Fprintln(os.Stderr, exitErr.Error())
			}
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("cyq - Bolt wire protocol query tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cyq run [flags] [file|-]       - Execute a query against a database")
	fmt.Println("  cyq ping [flags]               - Test database connectivity")
	fmt.Println("  cyq version                    - Show version information")
	fmt.Println()
	fmt.Println("Run flags:")
	fmt.Println("  --url <url>                    - Connection URL (or set CYQ_URL)")
	fmt.Println("  --params <json>                - Params as JSON object (e.g. '{\"n\": 1}')")
	fmt.Println("  --params-file <path>           - Params from JSON file")
	fmt.Println("  --format table|json|jsonl      - Output format (default: table)")
	fmt.Println("  --timeout 10s                  - Optional context timeout (default: none)")
	fmt.Println("  --otel-stdout                   - Print traces/metrics via the OpenTelemetry stdout exporters")
}

func versionCommand() error {
	fmt.Printf("cyq version %s\n", driver.Version())
	fmt.Printf("User agent: %s\n", driver.UserAgent())
	return nil
}
