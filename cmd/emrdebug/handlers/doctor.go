package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws-samples/remote-debugging-with-emr/internal/util/netutil"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/prerequisites"
)

// Factory function variables for doctor - can be replaced in tests.
var (
	checkTools  = prerequisites.CheckAll
	probePort   = netutil.Probe
	waitForPort = netutil.WaitForPort
)

// DoctorOptions controls Doctor.
type DoctorOptions struct {
	ConfigPath string

	// Port is the local IDE debug listener to probe. Zero skips the probe.
	Port int

	// Wait keeps probing for up to this long. Zero probes once.
	Wait time.Duration
}

// Doctor checks the local environment for a debugging session: client
// tools, the configuration, and the IDE debug listener. Missing required
// tools and an invalid configuration fail the check. A listener that is
// not up yet is only reported.
func Doctor(ctx context.Context, out io.Writer, opts DoctorOptions) error {
	var errs []error

	fmt.Fprintln(out, "Tools")
	results := checkTools()
	for _, r := range results.Results {
		switch {
		case r.Found:
			fmt.Fprintf(out, "  [OK] %-24s %s %s\n", r.Tool.Name, r.Path, r.Version)
		case r.Tool.Required:
			fmt.Fprintf(out, "  [!!] %-24s missing: %s\n", r.Tool.Name, r.Tool.InstallURL)
		default:
			fmt.Fprintf(out, "  [  ] %-24s optional: %s\n", r.Tool.Name, r.Tool.Description)
		}
	}
	if err := results.Error(); err != nil {
		errs = append(errs, err)
	}

	fmt.Fprintln(out, "Configuration")
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(out, "  [!!] %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(out, "  [OK] %s in %s for account %s\n", cfg.Name, cfg.Region, cfg.Account)
	}

	if opts.Port > 0 {
		fmt.Fprintln(out, "Debug listener")
		var perr error
		if opts.Wait > 0 {
			perr = waitForPort(ctx, "127.0.0.1", opts.Port, opts.Wait)
		} else {
			perr = probePort(ctx, "127.0.0.1", opts.Port)
		}
		if perr != nil {
			fmt.Fprintf(out, "  [??] %v; start the IDE debug server before submitting a job\n", perr)
		} else {
			fmt.Fprintf(out, "  [OK] listening on 127.0.0.1:%d\n", opts.Port)
		}
	}

	return errors.Join(errs...)
}
