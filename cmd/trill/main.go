// Command trill is the CLI front end over the Trill language pipeline
// (spec.md §6 "CLI, out of core, shown for completeness"). It reads a
// script, samples it and, with --probabilities, also computes its exact
// outcome distribution, and prints errors in the pipeline's user-visible
// form.
package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	trill "github.com/gregersn/trill"
	"github.com/gregersn/trill/pkgs/errors"
)

// log is constructed once at startup and threaded only through the CLI
// layer; the language pipeline itself stays free of logging side-effects
// (spec.md §5's synchronous, effect-free evaluation model).
var log *zap.SugaredLogger

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "trill: failed to start logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log = logger.Sugar()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	return 1
}

func newRootCmd() *cobra.Command {
	var (
		average       bool
		seed          int64
		seeded        bool
		probabilities bool
		digits        int
		multiplier    float64
		watch         bool
	)

	cmd := &cobra.Command{
		Use:           "trill <source>",
		Short:         "Roll and analyze dice expressions",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeded = cmd.Flags().Changed("seed")
			opts := options{
				average:       average,
				seed:          seed,
				seeded:        seeded,
				probabilities: probabilities,
				digits:        digits,
				multiplier:    multiplier,
			}
			if watch {
				return watchAndRun(args[0], opts)
			}
			return run(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&average, "average", false, "Use expected values instead of random draws")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Fix the random seed")
	cmd.Flags().BoolVar(&probabilities, "probabilities", false, "Also run the probability calculator and print a table")
	cmd.Flags().IntVar(&digits, "digits", 4, "Digits to round printed floating-point values to")
	cmd.Flags().Float64Var(&multiplier, "multiplier", 1, "Scale applied to reported probabilities (e.g. 100 for percent)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run the source file each time it is saved (requires a file path, not a literal script)")

	return cmd
}

type options struct {
	average       bool
	seed          int64
	seeded        bool
	probabilities bool
	digits        int
	multiplier    float64
}

// watchAndRun re-evaluates path every time it changes on disk, until the
// watcher's channels close; watcher errors are logged and watching goes on.
// An editor's atomic-rename save is surfaced as fsnotify.Remove followed by
// fsnotify.Create, so we re-add the watch on Remove rather than exiting.
func watchAndRun(path string, opts options) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &cliError{code: 1, err: fmt.Errorf("--watch requires an existing source file, got %q", path)}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &cliError{code: 2, err: fmt.Errorf("starting file watcher: %w", err)}
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return &cliError{code: 2, err: fmt.Errorf("watching %s: %w", path, err)}
	}

	log.Infow("watching for changes", "path", path)
	if err := run(path, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				log.Debugw("source changed, re-evaluating", "path", path, "op", event.Op.String())
				if err := run(path, opts); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}
			if event.Op&fsnotify.Remove != 0 {
				_ = watcher.Add(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorw("watcher error", "error", err)
		}
	}
}

// run implements the CLI pipeline of SPEC_FULL.md's AMBIENT STACK: resolve
// source (literal or file), evaluate, then optionally render a probability
// table. Exit codes: 1 bad arguments, 2 I/O error, 3 pipeline fatal error.
func run(arg string, opts options) error {
	source, err := resolveSource(arg)
	if err != nil {
		return &cliError{code: 2, err: err}
	}

	log.Debugw("evaluating source", "average", opts.average, "seeded", opts.seeded, "seed", opts.seed)

	values, diags := trill.Run(source, trill.Options{
		Average: opts.average,
		Seed:    opts.seed,
		Seeded:  opts.seeded,
	})
	if len(diags) > 0 {
		printDiagnostics(diags)
		return &cliError{code: 3, err: fmt.Errorf("evaluation failed")}
	}

	for _, v := range values {
		fmt.Println(formatValue(v, opts.digits))
	}

	if opts.probabilities {
		results, diags := trill.Distribute(source)
		if len(diags) > 0 {
			printDiagnostics(diags)
			return &cliError{code: 3, err: fmt.Errorf("probability calculation failed")}
		}
		for _, r := range results {
			renderReport(r.Report, opts.digits, opts.multiplier)
		}
	}

	return nil
}

// resolveSource treats arg as a file path when it names an existing file,
// otherwise as a literal script (spec.md §6's CLI "positional source").
func resolveSource(arg string) (string, error) {
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return arg, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", arg, err)
	}
	return string(data), nil
}

func printDiagnostics(diags []errors.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
}
