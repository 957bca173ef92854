package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/thek4n/clipstash/internal/application/service"
	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/event"
	infralogger "github.com/thek4n/clipstash/internal/infrastructure/logger"
)

var errUsage = errors.New("invalid usage")

type apikeysOptions struct {
	Store storeOptions `group:"Storage Options"`
}

func apikeysCommand(args []string, out io.Writer) error {
	var opts apikeysOptions

	args, err := flags.NewParser(&opts, flags.Default).ParseArgs(args)
	if err != nil {
		return fmt.Errorf("parse params error: %w", err)
	}

	if len(args) < 1 {
		printAPIKeysUsage()
		return errUsage
	}

	if err := requirePersistentStore(opts.Store); err != nil {
		return err
	}

	s, err := openStore(opts.Store, config.DefaultStorageConfig{})
	if err != nil {
		return err
	}
	defer s.Close()

	apikeys := service.NewAPIKeysService(
		s.apikeys,
		event.NewPublisher(),
		config.DefaultClipValidationConfig{},
		infralogger.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))),
	)

	return runAPIKeysCommand(apikeys, args, out)
}

func runAPIKeysCommand(apikeys *service.APIKeysService, args []string, out io.Writer) error {
	switch args[0] {
	case "gen":
		apikey, err := apikeys.GenerateAPIKey()
		if err != nil {
			return fmt.Errorf("fail to generate apikey: %w", err)
		}

		fmt.Fprintln(out, columnT(fmt.Sprintf("Key\tStatus\n%s\t✅valid", apikey)))

	case "revoke":
		key, err := apikeyArg(args)
		if err != nil {
			return err
		}

		revoked, err := apikeys.RevokeAPIKey(key)
		if err != nil {
			return fmt.Errorf("fail to revoke apikey: %w", err)
		}
		if !revoked {
			return fmt.Errorf("apikey not found")
		}

		fmt.Fprintln(out, "revoked")

	case "check":
		key, err := apikeyArg(args)
		if err != nil {
			return err
		}

		valid, err := apikeys.ValidateAPIKey(key)
		if err != nil {
			return fmt.Errorf("fail to check apikey: %w", err)
		}

		status := "✅valid"
		if !valid {
			status = "❌invalid"
		}
		fmt.Fprintln(out, columnT(fmt.Sprintf("Key\tStatus\n%s\t%s", key, status)))

	default:
		printAPIKeysUsage()
		return errUsage
	}

	return nil
}

func apikeyArg(args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("parse params error: apikey not provided")
	}
	return args[1], nil
}

func printAPIKeysUsage() {
	usageMessage := `usage: %s apikeys [options] <command> [args]

Commands:
	gen            Generate new apikey
	revoke <key>   Revoke apikey
	check <key>    Check apikey is valid
`

	fmt.Fprintf(os.Stderr, usageMessage, os.Args[0])
}

func columnT(input string) string {
	if input == "" {
		return ""
	}

	lines := strings.Split(strings.TrimSpace(input), "\n")

	var rows [][]string
	maxCols := 0

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			rows = append(rows, fields)
			if len(fields) > maxCols {
				maxCols = len(fields)
			}
		}
	}

	if maxCols == 0 {
		return ""
	}

	colWidths := make([]int, maxCols)
	for _, row := range rows {
		for j, field := range row {
			colWidths[j] = max(colWidths[j], len(field))
		}
	}

	var result strings.Builder
	for i, row := range rows {
		for j, field := range row {
			if j > 0 {
				result.WriteString("  ")
			}
			fmt.Fprintf(&result, "%-*s", colWidths[j], field)
		}
		if i < len(rows)-1 {
			result.WriteString("\n")
		}
	}

	return result.String()
}
