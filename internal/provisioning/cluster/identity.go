package cluster

import (
	"fmt"

	"github.com/aws-samples/remote-debugging-with-emr/internal/k8s"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
)

// AuthConfigMapID is the logical ID of the materialized identity map.
var AuthConfigMapID = manifestIDFor("ConfigMap", k8s.KubeSystemNamespace, k8s.AWSAuthConfigMap)

// IdentityProvisioner materializes the role mappings accumulated by earlier
// phases into the cluster's identity map. It must run last.
type IdentityProvisioner struct{}

// NewIdentityProvisioner creates a new identity provisioner.
func NewIdentityProvisioner() *IdentityProvisioner {
	return &IdentityProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *IdentityProvisioner) Name() string {
	return phaseIdentity
}

// Provision implements the provisioning.Phase interface.
func (p *IdentityProvisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.Cluster == nil {
		return provisioning.ErrClusterNotDeclared
	}

	cm, err := ctx.State.AuthMap.ConfigMap()
	if err != nil {
		return err
	}

	// The cluster creates its own aws-auth for managed node groups; ours
	// replaces it with the full mapping set.
	if _, err := provisioning.DeclareManifest(ctx, phaseIdentity, AuthConfigMapID, cm, provisioning.ManifestOptions{
		Overwrite: true,
	}); err != nil {
		return err
	}

	for _, consumer := range ctx.State.AuthConsumers {
		if err := ctx.Template.DependOn(consumer, AuthConfigMapID); err != nil {
			return fmt.Errorf("failed to order %s after the identity map: %w", consumer, err)
		}
	}

	ctx.Observer.Printf("[%s] Materialized %d role mappings into %s/%s",
		phaseIdentity, ctx.State.AuthMap.Len(), k8s.KubeSystemNamespace, k8s.AWSAuthConfigMap)
	return nil
}
