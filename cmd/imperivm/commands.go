package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/celerix-dev/imperivm/internal/auth"
	"github.com/celerix-dev/imperivm/internal/backup"
	"github.com/celerix-dev/imperivm/internal/config"
	"github.com/celerix-dev/imperivm/internal/engine"
	"github.com/celerix-dev/imperivm/internal/syndicate"
	"github.com/celerix-dev/imperivm/pkg/sdk"
)

// openStore opens the configured store for an offline command.
func openStore() (config.Config, *engine.MemStore, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger := cfg.NewLogger(os.Stderr)
	store, err := sdk.Open(cfg.Driver, cfg.StorePath(), logger)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, store, logger, nil
}

func openController() (*syndicate.Controller, *engine.MemStore, error) {
	cfg, store, logger, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	if _, err := syndicate.Migrate(store, cfg.Namespace); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	ctl := syndicate.New(syndicate.Options{Store: store, Namespace: cfg.Namespace, Logger: logger})
	ctl.Load()
	return ctl, store, nil
}

func runExport(args []string, stdout io.Writer) error {
	var (
		out  string
		opts backup.Options
	)
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	fs.StringVarP(&out, "out", "o", "", "write the backup to FILE instead of stdout")
	fs.BoolVar(&opts.Compress, "compress", false, "compress with zstd")
	fs.StringVar(&opts.Passphrase, "passphrase", "", "seal the backup with an age passphrase")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	ctl, store, err := openController()
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := backup.Encode(ctl.Export(), opts)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	fmt.Fprintf(stdout, "exported to %s\n", out)
	return nil
}

func runImport(args []string, stdout io.Writer) error {
	var (
		in         string
		passphrase string
		yes        bool
	)
	fs := pflag.NewFlagSet("import", pflag.ContinueOnError)
	fs.StringVarP(&in, "in", "i", "", "backup file to import")
	fs.StringVar(&passphrase, "passphrase", "", "passphrase for a sealed backup")
	fs.BoolVarP(&yes, "yes", "y", false, "confirm that the current collections will be replaced")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if in == "" {
		return fmt.Errorf("--in is required")
	}
	if !yes {
		return fmt.Errorf("import replaces existing collections; pass --yes to confirm")
	}

	raw, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	doc, err := backup.Decode(raw, passphrase)
	if err != nil {
		return err
	}

	ctl, store, err := openController()
	if err != nil {
		return err
	}
	defer store.Close()

	replaced, err := ctl.Import(doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "imported %v\n", replaced)
	return nil
}

func runBuckets(args []string, stdout io.Writer) error {
	cfg, store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	buckets, err := store.Buckets(cfg.Namespace)
	if err != nil {
		return err
	}
	return printJSON(stdout, buckets)
}

func runDump(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: imperivm %s", dumpUsage)
	}
	cfg, store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := store.Dump(cfg.Namespace, args[0])
	if err != nil {
		return fmt.Errorf("dump %s: %w", args[0], err)
	}
	return printJSON(stdout, data)
}

func runCopy(args []string, stdout io.Writer) error {
	var toDriver, toPath string
	fs := pflag.NewFlagSet("copy", pflag.ContinueOnError)
	fs.StringVar(&toDriver, "to-driver", "", "destination driver (file or sqlite)")
	fs.StringVar(&toPath, "to-path", "", "destination data directory or database file")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if toDriver == "" || toPath == "" {
		return fmt.Errorf("--to-driver and --to-path are required")
	}

	_, src, logger, err := openStore()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := sdk.Open(toDriver, toPath, logger)
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	if err := engine.Copy(src, dst); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("flush destination: %w", err)
	}
	fmt.Fprintf(stdout, "copied to %s %s\n", toDriver, toPath)
	return nil
}

func runMigrate(args []string, stdout io.Writer) error {
	cfg, store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	applied, err := syndicate.Migrate(store, cfg.Namespace)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintf(stdout, "already at %s\n", syndicate.CurrentVersion)
		return nil
	}
	fmt.Fprintf(stdout, "migrated to %s\n", applied[len(applied)-1])
	return nil
}

func runHashPassword(args []string, stdout io.Writer) error {
	var cost int
	fs := pflag.NewFlagSet("hash-password", pflag.ContinueOnError)
	fs.IntVar(&cost, "cost", 0, "bcrypt cost, 0 for the library default")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: imperivm %s", hashUsage)
	}
	hash, err := auth.HashPassword(fs.Arg(0), cost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}
