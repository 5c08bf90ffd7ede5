package infrastructure

import (
	"fmt"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// Provisioner declares the network fabric (networks, peering, bucket).
type Provisioner struct {
	fabric *Fabric
}

// NewProvisioner creates a new network provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{fabric: NewFabric()}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phaseNetwork
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	n := ctx.Config.Network

	// Reject overlapping ranges before anything is declared.
	if err := config.CheckNoOverlap(n.Dev.CIDR, n.EMR.CIDR); err != nil {
		return err
	}

	// 1. Networks
	dev, err := BuildNetwork(ctx, n.Dev, n.MaxAZs)
	if err != nil {
		return err
	}
	ctx.State.Dev = dev

	emr, err := BuildNetwork(ctx, n.EMR, n.MaxAZs)
	if err != nil {
		return err
	}
	ctx.State.EMR = emr

	// 2. Peering, requested from the EMR side
	peering, err := p.fabric.Peer(ctx, emr, dev)
	if err != nil {
		return err
	}
	ctx.State.PeeringID = peering

	// 3. Artifact bucket
	bucket, err := DeclareArtifactBucket(ctx)
	if err != nil {
		return err
	}

	return p.declareOutputs(ctx, bucket)
}

func (p *Provisioner) declareOutputs(ctx *provisioning.Context, bucket topology.Ref) error {
	stack := ctx.Config.Network.Stack
	dev, emr := ctx.State.Dev, ctx.State.EMR
	outputs := []struct {
		name, description string
		value             any
	}{
		{"DevVpcId", fmt.Sprintf("%s network", dev.Name), topology.RefTo(dev.ID)},
		{"EmrVpcId", fmt.Sprintf("%s network", emr.Name), topology.RefTo(emr.ID)},
		{"DevPrivateSubnetIds", "", topology.Join{Delimiter: ",", Parts: dev.PrivateSubnetRefs()}},
		{"EmrPrivateSubnetIds", "", topology.Join{Delimiter: ",", Parts: emr.PrivateSubnetRefs()}},
		{"DevPublicSubnetIds", "", topology.Join{Delimiter: ",", Parts: dev.PublicSubnetRefs()}},
		{"EmrPublicSubnetIds", "", topology.Join{Delimiter: ",", Parts: emr.PublicSubnetRefs()}},
		{"VpcPeeringConnectionId", "", topology.RefTo(ctx.State.PeeringID)},
		{"S3Bucket", "Artifact bucket for job code and logs", bucket},
	}
	for _, o := range outputs {
		if err := provisioning.DeclareOutput(ctx, stack, o.name, o.description, o.value); err != nil {
			return err
		}
	}
	return nil
}
