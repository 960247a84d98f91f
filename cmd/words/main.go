// Package main implements the words command line client for the vocabulary
// trainer service: log in, look words up, add them to a study list, and
// review the ones that are due.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/platform/logger"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process globals, so tests can drive it.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "warning: could not read .env: %v\n", err)
	}

	fset := flag.NewFlagSet("words", flag.ContinueOnError)
	fset.SetOutput(stderr)
	configPath := fset.String("config", "", "path to a config.yaml file")
	output := fset.String("o", formatText, "output format: text, json or yaml")
	fset.Usage = func() { usage(fset) }
	if err := fset.Parse(args); err != nil {
		return exitUsage
	}
	if !validFormat(*output) {
		fmt.Fprintf(stderr, "unknown output format %q\n", *output)
		return exitUsage
	}
	if fset.NArg() == 0 {
		fset.Usage()
		return exitUsage
	}
	name, cmdArgs := fset.Arg(0), fset.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		fset.Usage()
		return exitUsage
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return exitError
	}
	log := logger.Setup(cfg.Log, stderr)

	app, err := newApplication(ctx, cfg, log, stdin, stdout, *output)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize: %v\n", err)
		return exitError
	}
	defer app.cleanup()

	if err := app.execute(ctx, cmd, cmdArgs); err != nil {
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(stderr, "usage: words %s\n", cmd.usage)
			return exitUsage
		}
		fmt.Fprintln(stderr, describe(err))
		return exitError
	}
	return exitOK
}

func usage(fset *flag.FlagSet) {
	w := fset.Output()
	fmt.Fprintln(w, "usage: words [-config path] [-o text|json|yaml] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-30s %s\n", commands[name].usage, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fset.PrintDefaults()
}
