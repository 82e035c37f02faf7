package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

type command struct {
	usage string
	run   func(args []string, stdout io.Writer) error
}

const (
	dumpUsage = "dump <bucket>"
	hashUsage = "hash-password [--cost N] <password>"
)

var commands = map[string]command{
	"export":        {"export [--out FILE] [--compress] [--passphrase P]", runExport},
	"import":        {"import --in FILE [--passphrase P] --yes", runImport},
	"buckets":       {"buckets", runBuckets},
	"dump":          {dumpUsage, runDump},
	"copy":          {"copy --to-driver DRIVER --to-path PATH", runCopy},
	"migrate":       {"migrate", runMigrate},
	"hash-password": {hashUsage, runHashPassword},
}

var order = []string{"export", "import", "buckets", "dump", "copy", "migrate", "hash-password"}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "imperivm: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stdout)
		return nil
	}
	cmd, ok := commands[strings.ToLower(args[0])]
	if !ok {
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(args[1:], stdout)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Imperivm admin CLI - offline maintenance of the syndicate store")
	fmt.Fprintln(w, "\nUsage:")
	for _, name := range order {
		fmt.Fprintf(w, "  imperivm %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "\nThe store is selected with the same IMPERIVM_* variables as the daemon.")
	fmt.Fprintln(w, "Stop imperivmd before writing to its store.")
}

// parseFlags parses args and treats --help as success.
func parseFlags(fs *pflag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func printJSON(w io.Writer, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bytes))
	return err
}
