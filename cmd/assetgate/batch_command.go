package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"assetgate/internal/batch"
	"assetgate/internal/config"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
	"assetgate/internal/services"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		extensions  []string
		delayMS     int
		metricsAddr string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Ingest every matching file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			r, logger, err := ctx.newRecipe()
			if err != nil {
				return err
			}
			runCtx := ctx.runContext(cmd)

			root, err := filepath.Abs(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "resolve directory", args[0], err)
			}

			opts := batch.Options{
				Extensions:  cfg.Batch.Extensions,
				Delay:       cfg.BatchDelay(),
				Collections: cfg.Batch.Collections,
				Logger:      logger,
			}
			if cmd.Flags().Changed("extensions") {
				opts.Extensions = config.NormalizeExtensions(extensions)
			}
			if cmd.Flags().Changed("delay-ms") {
				if delayMS < 0 {
					return errors.New("--delay-ms must be >= 0")
				}
				opts.Delay = time.Duration(delayMS) * time.Millisecond
			}

			addr := strings.TrimSpace(metricsAddr)
			if addr == "" {
				addr = cfg.Batch.MetricsAddr
			}
			if addr != "" {
				stop, err := startMetrics(runCtx, addr, logger)
				if err != nil {
					return err
				}
				defer stop()
			}

			summary, err := batch.Run(runCtx, r, root, opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				renderSummary(cmd, summary)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total())
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "File extensions to ingest (defaults to batch.extensions)")
	cmd.Flags().IntVar(&delayMS, "delay-ms", 0, "Pause between files in milliseconds (defaults to batch.delay_ms)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address during the run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}

// startMetrics serves the metrics router until the returned stop func runs.
func startMetrics(ctx context.Context, addr string, logger *slog.Logger) (func(), error) {
	srv, err := metrics.Listen(addr, logger)
	if err != nil {
		return nil, err
	}
	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(serveCtx); err != nil {
			logging.WarnWithContext(ctx, logger, "metrics server stopped", "metrics_server_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "metrics unavailable for the rest of the run"),
			)
		}
	}()
	return func() {
		cancel()
		<-done
	}, nil
}

func renderSummary(cmd *cobra.Command, summary batch.Summary) {
	out := cmd.OutOrStdout()
	if isTerminal(out) {
		rows := make([][]string, 0, len(summary.Files))
		for _, f := range summary.Files {
			rows = append(rows, []string{
				filepath.Base(f.Path),
				strconv.FormatInt(f.Result.Size, 10),
				string(f.Outcome),
				dash(f.Result.AssetID),
				dash(f.Error),
			})
		}
		aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
		fmt.Fprintln(out, renderTable([]string{"File", "Size", "Outcome", "Asset", "Error"}, rows, aligns))
	} else {
		for _, f := range summary.Files {
			line := fmt.Sprintf("%s\t%s\t%s", f.Outcome, f.Path, dash(f.Result.AssetID))
			if f.Error != "" {
				line += "\t" + f.Error
			}
			fmt.Fprintln(out, line)
		}
	}
	fmt.Fprintf(out, "Processed %d files: %d succeeded, %d failed, %d rejected\n",
		summary.Total(), summary.Succeeded, summary.Failed, summary.Rejected)
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
