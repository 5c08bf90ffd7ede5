package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/aws-samples/remote-debugging-with-emr/internal/k8s"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
)

// SynthOptions controls Synth.
type SynthOptions struct {
	ConfigPath string

	// OutputPath receives the template. Empty or "-" writes to out.
	OutputPath string

	// ManifestsPath, when set, receives the cluster objects as a YAML stream.
	ManifestsPath string

	Verbosity int
}

// Synth assembles the topology and renders it as a deployable template.
func Synth(ctx context.Context, out io.Writer, opts SynthOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger := provisioning.NewConsoleLogger(logOutput, opts.Verbosity)
	result, err := newAssembler(cfg, logger).Assemble(ctx)
	if err != nil {
		return fmt.Errorf("failed to assemble topology: %w", err)
	}

	data, err := result.Template.Render()
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	if opts.OutputPath == "" || opts.OutputPath == "-" {
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			return err
		}
	} else {
		if err := writeFile(opts.OutputPath, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write template: %w", err)
		}
		fmt.Fprintf(out, "Template written to %s (%d resources)\n", opts.OutputPath, result.Template.Len())
	}

	if opts.ManifestsPath == "" {
		return nil
	}
	objs, err := result.Manifests()
	if err != nil {
		return err
	}
	manifests, err := k8s.RenderYAML(objs...)
	if err != nil {
		return fmt.Errorf("failed to render manifests: %w", err)
	}
	if err := writeFile(opts.ManifestsPath, manifests, 0644); err != nil {
		return fmt.Errorf("failed to write manifests: %w", err)
	}
	fmt.Fprintf(out, "Manifests written to %s (%d objects)\n", opts.ManifestsPath, len(objs))
	return nil
}
