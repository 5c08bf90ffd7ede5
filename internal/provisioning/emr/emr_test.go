package emr

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning/cluster"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning/infrastructure"
)

const testAccount = "123456789012"

// clusterContext returns a context with the network and cluster declared.
func clusterContext(t *testing.T, mutate ...func(*config.Config)) *provisioning.Context {
	t.Helper()
	cfg := config.Default(testAccount)
	for _, m := range mutate {
		m(cfg)
	}
	ctx := provisioning.NewContext(context.Background(), cfg, logr.Discard())
	require.NoError(t, infrastructure.NewProvisioner().Provision(ctx))
	require.NoError(t, cluster.NewProvisioner().Provision(ctx))
	return ctx
}

func trustOf(t *testing.T, ctx *provisioning.Context, id string) *iam.Document {
	t.Helper()
	require.True(t, ctx.Template.Has(id), "role %s not declared", id)
	doc, ok := ctx.State.Trust(id)
	require.True(t, ok)
	return doc
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}
