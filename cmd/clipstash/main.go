// Enter point to clipstash service.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

var version = "built-from-source"

var usageMessage = `usage: %s <command>

Commands:
	run       Run clipstash server.
	apikeys   API keys management.
	sweep     Remove expired clips once.
	ping      Ping command. Can be used for check app health.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usageMessage, os.Args[0])
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Fail to load .env: %s\n", err)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runServer(os.Args[2:])

	case "apikeys":
		err = apikeysCommand(os.Args[2:], os.Stdout)

	case "sweep":
		err = sweepCommand(os.Args[2:], os.Stdout)

	case "ping":
		err = pingCommand(os.Args[2:])

	default:
		fmt.Fprintf(os.Stderr, usageMessage, os.Args[0])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
