package provisioning

import (
	"fmt"
	"strings"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
)

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation.
// It runs before anything is declared so a rejected configuration leaves the
// template empty.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	if ctx.Config == nil {
		return fmt.Errorf("no configuration")
	}
	if err := ctx.Config.Validate(); err != nil {
		return err
	}

	var errs []ValidationError
	for _, ve := range validate(ctx.Config) {
		if ve.IsError() {
			errs = append(errs, ve)
			continue
		}
		LogValidationWarning(ctx.Observer, ve.Field, ve.Message)
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(msgs, "\n  "))
	}

	ctx.Observer.Printf("[Validation] Validation passed")
	return nil
}

// validate returns findings that config.Validate does not treat as fatal on
// its own, plus cross-section errors.
func validate(cfg *config.Config) []ValidationError {
	var findings []ValidationError

	if !cfg.HasAdminRole() {
		findings = append(findings, ValidationError{
			Field:    "cluster.admin_role_name",
			Message:  "no admin role configured; only the cluster creator will have cluster-admin access",
			Severity: "warning",
		})
	}

	if !cfg.Containers.StrictTrust {
		findings = append(findings, ValidationError{
			Field:    "emr_containers.strict_trust",
			Message:  "audience statement is additive; any service account token with the audience can assume the job role",
			Severity: "warning",
		})
	}

	if cfg.Cluster.Dashboard && !cfg.HasAdminRole() {
		findings = append(findings, ValidationError{
			Field:    "cluster.dashboard",
			Message:  "dashboard enabled without an admin role; sign in with the eks-admin service account token",
			Severity: "warning",
		})
	}

	if cfg.Cluster.AirflowNamespace != "" && cfg.Cluster.AirflowNamespace == cfg.Containers.Namespace {
		findings = append(findings, ValidationError{
			Field:    "cluster.airflow_namespace",
			Message:  fmt.Sprintf("must differ from the job namespace %q", cfg.Containers.Namespace),
			Severity: "error",
		})
	}

	return findings
}
