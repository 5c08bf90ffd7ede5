package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/k8s"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning/cluster"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning/emr"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning/infrastructure"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// ErrApplyOrder is returned when the resolved apply order would create a
// virtual cluster before the namespace objects it schedules into.
var ErrApplyOrder = errors.New("apply order violates namespace binding")

// Result is an assembled topology.
type Result struct {
	Template   *topology.Template
	Outputs    []topology.Output
	ApplyOrder []string

	// RoleMappings is the materialized identity map.
	RoleMappings []k8s.RoleMapping

	// Capacity is the node-selection policy that was declared.
	Capacity string
}

// Assembler runs the declaration phases.
type Assembler struct {
	config   *config.Config
	logger   logr.Logger
	observer provisioning.Observer
	phases   []provisioning.Phase
}

// NewAssembler creates an assembler for cfg. cfg should already have
// defaults applied.
func NewAssembler(cfg *config.Config, logger logr.Logger) *Assembler {
	return &Assembler{
		config: cfg,
		logger: logger,
		phases: []provisioning.Phase{
			provisioning.NewValidationPhase(),
			infrastructure.NewProvisioner(),
			cluster.NewProvisioner(),
			cluster.NewCapacityComposer(),
			emr.NewContainersProvisioner(),
			emr.NewServerlessProvisioner(),
			infrastructure.NewDevboxProvisioner(),
			cluster.NewIdentityProvisioner(),
		},
	}
}

// WithObserver routes phase and resource events to observer instead of
// the logger.
func (a *Assembler) WithObserver(observer provisioning.Observer) *Assembler {
	a.observer = observer
	return a
}

// Phases returns the phase names in execution order.
func (a *Assembler) Phases() []string {
	names := make([]string, len(a.phases))
	for i, p := range a.phases {
		names[i] = p.Name()
	}
	return names
}

// Assemble declares the whole topology and returns it with its apply order.
func (a *Assembler) Assemble(ctx context.Context) (*Result, error) {
	pCtx := provisioning.NewContext(ctx, a.config, a.logger)
	if a.observer != nil {
		pCtx.Observer = a.observer
	}

	if err := provisioning.RunPhases(pCtx, a.phases); err != nil {
		return nil, err
	}

	if err := pCtx.Template.Validate(); err != nil {
		return nil, fmt.Errorf("topology is not acyclic: %w", err)
	}
	order, err := pCtx.Template.ApplyOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve apply order: %w", err)
	}
	if err := checkBindingOrder(order, pCtx.State); err != nil {
		return nil, err
	}

	return &Result{
		Template:     pCtx.Template,
		Outputs:      pCtx.Template.Outputs(),
		ApplyOrder:   order,
		RoleMappings: pCtx.State.AuthMap.Roles(),
		Capacity:     pCtx.State.CapacityPolicy,
	}, nil
}

// checkBindingOrder verifies that the namespace, its role, its binding and
// the virtual cluster are applied in that order.
func checkBindingOrder(order []string, state *provisioning.State) error {
	if state.VirtualClusterID == "" {
		return nil
	}
	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	chain := append(append([]string(nil), state.NamespaceChain...), state.VirtualClusterID)
	for i := 1; i < len(chain); i++ {
		before, ok := position[chain[i-1]]
		if !ok {
			return fmt.Errorf("%w: %s is not declared", ErrApplyOrder, chain[i-1])
		}
		after, ok := position[chain[i]]
		if !ok {
			return fmt.Errorf("%w: %s is not declared", ErrApplyOrder, chain[i])
		}
		if before >= after {
			return fmt.Errorf("%w: %s must precede %s", ErrApplyOrder, chain[i-1], chain[i])
		}
	}
	return nil
}
