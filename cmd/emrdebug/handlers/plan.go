package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/aws-samples/remote-debugging-with-emr/internal/orchestration"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/ui/tui"
)

// PlanOptions controls Plan.
type PlanOptions struct {
	ConfigPath string
	JSON       bool
	Verbosity  int
}

// Plan assembles the topology and prints a summary of what would be
// deployed. On a terminal the phases are shown live while they run.
func Plan(ctx context.Context, out io.Writer, opts PlanOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	var result *orchestration.Result
	if !opts.JSON && isInteractiveTTY() {
		assembler := newAssembler(cfg, logr.Discard())
		err = runProgress(ctx, "emrdebug plan", cfg.Region, assembler.Phases(), func(o provisioning.Observer) error {
			r, err := assembler.WithObserver(o).Assemble(ctx)
			result = r
			return err
		})
	} else {
		logger := provisioning.NewConsoleLogger(logOutput, opts.Verbosity)
		result, err = newAssembler(cfg, logger).Assemble(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to assemble topology: %w", err)
	}

	summary := tui.NewSummary(cfg, result)
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	_, err = fmt.Fprintln(out, tui.RenderSummary(summary))
	return err
}
