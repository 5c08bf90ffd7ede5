package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes all phases sequentially, stopping at the first failure.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Declaring topology with %d phases...", len(phases))

	for i, phase := range phases {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("declaration cancelled before %s: %w", phase.Name(), err)
		}

		phaseStart := time.Now()
		ctx.Observer.Progress(phase.Name(), i+1, len(phases))
		LogPhaseStart(ctx.Observer, phase.Name())

		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, phase.Name(), err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		LogPhaseComplete(ctx.Observer, phase.Name(), time.Since(phaseStart))
	}

	ctx.Observer.Printf("Declared %d resources in %v", ctx.Template.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}
