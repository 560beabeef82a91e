package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/pulse-api-client/pkg/client"
	"github.com/Sternrassler/pulse-api-client/pkg/config"
	"github.com/Sternrassler/pulse-api-client/pkg/logging"
	"github.com/Sternrassler/pulse-api-client/pkg/pagination"
	"github.com/Sternrassler/pulse-api-client/pkg/sink"
)

// rootOptions holds the destination flags shared by every subcommand.
type rootOptions struct {
	redisAddr   string
	stream      string
	metricsAddr string
}

// newRootCmd builds the pulse-feed command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pulse-feed",
		Short: "Stream records from the Pulse API",
		Long: `pulse-feed follows Pulse cursor chains and emits every record it
traverses, either as JSON lines on stdout or appended to a Redis stream.

Connection settings come from the environment or a .env file:
PULSE_API_URL and PULSE_API_TOKEN are required. Traversal depth is
chosen per run with --pages, --records, or --all; without any of them
the client default of PULSE_MAX_PAGES pages applies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.redisAddr, "redis", "", "write records to Redis at this address instead of stdout")
	rootCmd.PersistentFlags().StringVar(&opts.stream, "stream", "", "Redis stream name (default \"pulse.<command>\")")
	rootCmd.PersistentFlags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the stream runs")

	rootCmd.AddCommand(
		newEventsCommand(opts),
		newPeopleCommand(opts),
		newMergedCommand(opts),
	)

	return rootCmd
}

// policyFlags holds the per-command traversal bounds. The flags are marked
// mutually exclusive; an untouched set resolves to the zero policy so the
// client default applies.
type policyFlags struct {
	pages   int
	records int
	all     bool
}

func addPolicyFlags(cmd *cobra.Command, f *policyFlags) {
	cmd.Flags().IntVar(&f.pages, "pages", 0, "stop after fetching this many pages")
	cmd.Flags().IntVar(&f.records, "records", 0, "stop after emitting this many records")
	cmd.Flags().BoolVar(&f.all, "all", false, "follow the cursor chain to the very end")
	cmd.MarkFlagsMutuallyExclusive("pages", "records", "all")
}

// policy translates the parsed flags into a traversal policy. Changed is
// consulted so an explicit --pages 0 stays ByPages(0) rather than falling
// back to the client default.
func (f *policyFlags) policy(cmd *cobra.Command) pagination.Policy {
	switch {
	case f.all:
		return pagination.All()
	case cmd.Flags().Changed("pages"):
		return pagination.ByPages(f.pages)
	case cmd.Flags().Changed("records"):
		return pagination.ByRecords(f.records)
	default:
		return pagination.Policy{}
	}
}

func newEventsCommand(opts *rootOptions) *cobra.Command {
	flags := &policyFlags{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream events from the events collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd, opts, flags, func(ctx context.Context, c *client.Client, policy pagination.Policy) iter.Seq2[client.Event, error] {
				return c.Events(ctx, policy)
			})
		},
	}
	addPolicyFlags(cmd, flags)

	return cmd
}

func newPeopleCommand(opts *rootOptions) *cobra.Command {
	flags := &policyFlags{}

	cmd := &cobra.Command{
		Use:   "people",
		Short: "Stream people from the people collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd, opts, flags, func(ctx context.Context, c *client.Client, policy pagination.Policy) iter.Seq2[client.Person, error] {
				return c.People(ctx, policy)
			})
		},
	}
	addPolicyFlags(cmd, flags)

	return cmd
}

func newMergedCommand(opts *rootOptions) *cobra.Command {
	flags := &policyFlags{}

	cmd := &cobra.Command{
		Use:   "merged",
		Short: "Stream events and people interleaved as pages arrive",
		Long: `Both collections are traversed concurrently and records are emitted
in arrival order. Per-collection order is preserved, and a --pages or
--records bound applies to each traversal separately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd, opts, flags, func(ctx context.Context, c *client.Client, policy pagination.Policy) iter.Seq2[json.RawMessage, error] {
				events := client.Items[json.RawMessage](ctx, c, client.PathEvents, policy)
				people := client.Items[json.RawMessage](ctx, c, client.PathPeople, policy)
				return pagination.Merge(events, people)
			})
		},
	}
	addPolicyFlags(cmd, flags)

	return cmd
}

// runFeed wires configuration, logging, and the client, then drains the
// sequence produced by source into the selected destination.
func runFeed[T any](cmd *cobra.Command, opts *rootOptions, flags *policyFlags, source func(context.Context, *client.Client, pagination.Policy) iter.Seq2[T, error]) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: cmd.ErrOrStderr(),
	})

	c, err := client.New(client.Config{
		BaseURL:         cfg.BaseURL,
		Token:           cfg.Token,
		DefaultMaxPages: cfg.MaxPages,
		Timeout:         cfg.Timeout,
	})
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		serveMetrics(opts.metricsAddr)
	}

	seq := source(cmd.Context(), c, flags.policy(cmd))

	if opts.redisAddr != "" {
		return feedStream(cmd, opts, seq)
	}
	return emitJSON(cmd.OutOrStdout(), seq)
}

// feedStream appends every record to a Redis stream and prints a short
// summary. The stream name defaults to pulse.<command> unless --stream
// overrides it.
func feedStream[T any](cmd *cobra.Command, opts *rootOptions, seq iter.Seq2[T, error]) error {
	rdb := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}

	stream := opts.stream
	if stream == "" {
		stream = "pulse." + cmd.Name()
	}

	delivered, err := sink.Run(cmd.Context(), sink.NewRedis(rdb, stream), seq)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d records to stream %s\n", delivered, stream)
	return nil
}

// emitJSON writes one JSON document per record, newline separated.
func emitJSON[T any](w io.Writer, seq iter.Seq2[T, error]) error {
	enc := json.NewEncoder(w)

	count := 0
	for record, err := range seq {
		if err != nil {
			return err
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		count++
	}

	log.Info().Int("records", count).Msg("Stream complete")
	return nil
}

// serveMetrics exposes the Prometheus registry for the lifetime of the
// process.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	log.Info().Str("addr", addr).Msg("Serving metrics")
}
