package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helio/keyword-mapper/internal/config"
	"github.com/helio/keyword-mapper/internal/expansion"
	"github.com/helio/keyword-mapper/internal/logger"
	"github.com/helio/keyword-mapper/internal/observability"
	"github.com/helio/keyword-mapper/internal/stream"
	"github.com/helio/keyword-mapper/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one market-map search end-to-end",
	Long: `Expands the target role and location into search combinations, collects
postings from the configured job sources, extracts keywords in batches, and
prints the ranked keyword map. Interrupting with Ctrl-C returns the partial
map consolidated so far.`,
	RunE: runMapCmd,
}

var (
	runRole     string
	runArea     string
	runLocation string
	runWorkMode string
	runCount    int
	runJSON     bool
	runVerbose  bool
)

func init() {
	runCommand.Flags().StringVarP(&runRole, "role", "r", "", "Target role, e.g. \"Analista de Dados\" (required)")
	runCommand.Flags().StringVarP(&runArea, "area", "a", "", "Professional area for role expansion, e.g. \"Tecnologia\"")
	runCommand.Flags().StringVarP(&runLocation, "location", "l", "", "Base location, e.g. \"Campinas, SP\" (required)")
	runCommand.Flags().StringVarP(&runWorkMode, "work-mode", "m", "hybrid", "Work mode: onsite, hybrid or remote")
	runCommand.Flags().IntVarP(&runCount, "count", "c", 50, "Desired number of postings to analyze")
	runCommand.Flags().BoolVar(&runJSON, "json", false, "Print the keyword map as JSON instead of formatted boxes")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print pipeline progress events")

	_ = runCommand.MarkFlagRequired("role")
	_ = runCommand.MarkFlagRequired("location")

	rootCmd.AddCommand(runCommand)
}

func runMapCmd(cmd *cobra.Command, _ []string) error {
	mode, ok := types.ParseWorkMode(runWorkMode)
	if !ok {
		return fmt.Errorf("invalid work mode %q: use onsite, hybrid or remote", runWorkMode)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(false, runVerbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	// Ctrl-C cancels collection; the partial map is still printed.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var sink stream.Sink
	if runVerbose {
		sink = stream.SinkFunc(func(ev stream.Event) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.Type, ev.Message)
		})
	}

	request := types.SearchRequest{
		TargetRole:   runRole,
		Area:         runArea,
		BaseLocation: runLocation,
		WorkMode:     mode,
		DesiredCount: runCount,
	}

	result, err := p.Run(ctx, request, sink)
	if err != nil {
		return err
	}

	if runJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintKeywordMap(&result)
	printer.PrintTop10(&result)

	if result.PostingsAnalyzed == 0 {
		if related := expansion.NewQueryExpander(log).SuggestRelatedRoles(runRole, 3); len(related) > 0 {
			fmt.Fprintf(os.Stderr, "No postings found. Related roles worth trying: %s\n", strings.Join(related, ", "))
		}
	}
	return nil
}
