// Command bdf scans a directory tree for byte-identical files that do
// not yet share physical extents and prints the resulting reflink
// candidates to stdout as NUL-delimited path pairs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desbma/bdf/internal/cliopts"
	"github.com/desbma/bdf/internal/logging"
	"github.com/desbma/bdf/internal/pipeline"
	"github.com/desbma/bdf/internal/progress"
	"github.com/desbma/bdf/internal/stats"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := cliopts.Parse("bdf", version, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bdf: error: %s\n", err)
		return 1
	}

	log := logging.New(os.Stderr, opts.Verbosity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn().Msg("received shutdown signal, draining in-flight work")
		cancel()
	}()

	st := &stats.Run{}

	var reporter *progress.Reporter
	if progress.Enabled(os.Stderr) {
		reporter = progress.New(os.Stderr, st)
	}

	pairs, runErr := pipeline.Run(ctx, pipeline.Options{
		TargetDir: opts.TargetDir,
		MinSize:   opts.MinSize,
		Jobs:      opts.Jobs,
	}, log, st)

	if reporter != nil {
		reporter.Stop()
	}

	if runErr != nil {
		if ctx.Err() != nil {
			log.Warn().Err(runErr).Msg("scan interrupted")
		} else {
			log.Error().Err(runErr).Msg("bdf: fatal error")
			return 1
		}
	}

	out := os.Stdout
	for _, p := range pairs {
		fmt.Fprintf(out, "%s\x00%s\x00", p.A, p.B)
	}

	snapshot := st.Snapshot()
	if opts.JSONStats {
		j, err := snapshot.JSON()
		if err != nil {
			log.Error().Err(err).Msg("bdf: could not render JSON stats")
			return 2
		}
		fmt.Fprintln(os.Stderr, j)
	} else {
		fmt.Fprintln(os.Stderr, snapshot.String())
	}

	if ctx.Err() != nil {
		return 1
	}
	return 0
}
