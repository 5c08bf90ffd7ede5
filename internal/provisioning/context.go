package provisioning

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/tags"
)

// Context wraps all dependencies and state needed for a declaration phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Template *topology.Template
	Observer Observer
}

// NewContext creates a new declaration context logging to logger.
func NewContext(ctx context.Context, cfg *config.Config, logger logr.Logger) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Template: topology.New(cfg.Name),
		Observer: NewLogObserver(logger),
	}
}

// Tags returns a tag builder for component with the topology name set.
func (c *Context) Tags(component string) *tags.Builder {
	return tags.NewBuilder(c.Config.Name).WithComponent(component)
}

// Partition returns the configured partition.
func (c *Context) Partition() string {
	return c.Config.PartitionOrDefault()
}
