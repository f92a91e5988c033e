package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rl1809/graphql-bench/internal/loadtest"
	"github.com/rl1809/graphql-bench/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		url         string
		connections int
		duration    int
		queryType   string
		queriesDir  string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:           "loadtest",
		Short:         "Benchmark a GraphQL endpoint with a fixed query",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := loadtest.LoadQuery(queryType, queriesDir)
			if err != nil {
				return err
			}

			level := logging.LevelWarn
			if verbose {
				level = logging.LevelDebug
			}
			logger := logging.New(logging.Config{Level: level, Format: logging.FormatText, Output: os.Stderr})

			fmt.Fprintf(out, "Running %s query benchmark against %s\n", queryType, url)
			fmt.Fprintf(out, "%d connections for %ds\n\n", connections, duration)

			res, err := loadtest.Run(cmd.Context(), loadtest.Options{
				URL:         url,
				Connections: connections,
				Duration:    time.Duration(duration) * time.Second,
				Query:       query,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			loadtest.Summarize(res).Report(out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&url, "url", "u", "http://localhost:4000/graphql", "GraphQL endpoint")
	f.IntVarP(&connections, "connections", "c", 10, "number of concurrent connections")
	f.IntVarP(&duration, "duration", "d", 10, "test duration in seconds")
	f.StringVarP(&queryType, "query", "q", "simple", "query type: simple, medium, complex or super-complex")
	f.StringVar(&queriesDir, "queries-dir", "", "read <query>.graphql from this directory instead of the built-in set")
	f.BoolVarP(&verbose, "verbose", "v", false, "log individual request failures")
	return cmd
}
