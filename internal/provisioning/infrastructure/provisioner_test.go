package infrastructure

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/tags"
)

func createTestContext(t *testing.T) *provisioning.Context {
	t.Helper()
	return provisioning.NewContext(context.Background(), config.Default("123456789012"), logr.Discard())
}

func peeringRoutes(tmpl *topology.Template) []topology.Resource {
	var routes []topology.Resource
	for _, r := range tmpl.ResourcesOfKind(topology.KindRoute) {
		if _, ok := r.Properties["VpcPeeringConnectionId"]; ok {
			routes = append(routes, r)
		}
	}
	return routes
}

func TestProvisioner_Name(t *testing.T) {
	assert.Equal(t, "network", NewProvisioner().Name())
}

func TestProvisioner_DefaultTopology(t *testing.T) {
	ctx := createTestContext(t)
	require.NoError(t, NewProvisioner().Provision(ctx))

	for _, n := range []*provisioning.Network{ctx.State.Dev, ctx.State.EMR} {
		require.NotNil(t, n)
		assert.Len(t, n.PublicSubnets, 3, n.Name)
		assert.Len(t, n.PrivateSubnets, 3, n.Name)
	}
	assert.Len(t, ctx.Template.ResourcesOfKind(topology.KindVPC), 2)
	assert.Len(t, ctx.Template.ResourcesOfKind(topology.KindSubnet), 12)
	assert.Len(t, ctx.Template.ResourcesOfKind(topology.KindPeeringConnection), 1)
	assert.Len(t, ctx.Template.ResourcesOfKind(topology.KindNatGateway), 6)

	routes := peeringRoutes(ctx.Template)
	require.Len(t, routes, 6)
	for i, r := range routes {
		assert.Equal(t, fmt.Sprintf("VPCPeer_%d", i), r.ID)
	}

	// Dev pass first, towards the EMR range; then the EMR pass back.
	for i := 0; i < 3; i++ {
		assert.Equal(t, "10.0.20.0/24", routes[i].Properties["DestinationCidrBlock"])
		assert.Equal(t, topology.RefTo(ctx.State.Dev.PrivateSubnets[i].RouteTable), routes[i].Properties["RouteTableId"])
		assert.Equal(t, "10.0.10.0/24", routes[3+i].Properties["DestinationCidrBlock"])
		assert.Equal(t, topology.RefTo(ctx.State.EMR.PrivateSubnets[i].RouteTable), routes[3+i].Properties["RouteTableId"])
	}

	peer, ok := ctx.Template.Get(PeeringID)
	require.True(t, ok)
	assert.Equal(t, topology.RefTo("EMRVPC"), peer.Properties["VpcId"])
	assert.Equal(t, topology.RefTo("DevVPC"), peer.Properties["PeerVpcId"])

	for _, key := range []string{
		"VPCStack.DevVpcId", "VPCStack.EmrVpcId", "VPCStack.EmrPrivateSubnetIds",
		"VPCStack.VpcPeeringConnectionId", "VPCStack.S3Bucket",
	} {
		_, ok := ctx.Template.Output(key)
		assert.True(t, ok, key)
	}
	require.NoError(t, ctx.Template.Validate())
}

func TestProvisioner_SubnetLayout(t *testing.T) {
	ctx := createTestContext(t)
	require.NoError(t, NewProvisioner().Provision(ctx))

	emr := ctx.State.EMR
	assert.Equal(t, "EMRVPCPrivateSubnet1", emr.PrivateSubnets[0].ID)
	assert.Equal(t, "10.0.20.0/27", emr.PublicSubnets[0].CIDR)
	assert.Equal(t, "10.0.20.96/27", emr.PrivateSubnets[0].CIDR)

	subnet, ok := ctx.Template.Get("EMRVPCPrivateSubnet3")
	require.True(t, ok)
	assert.Equal(t, false, subnet.Properties["MapPublicIpOnLaunch"])

	var name string
	for _, tag := range subnet.Properties["Tags"].([]tags.Tag) {
		if tag.Key == tags.KeyName {
			name = tag.Value
		}
	}
	assert.Equal(t, "VPCStack/EMR VPC/PrivateSubnet3", name)
	assert.True(t, ctx.Template.DependsOn("EMRVPCPrivateSubnet3DefaultRoute", "EMRVPCPublicSubnet3NATGateway"))
}

func TestProvisioner_OverlapRejectedBeforeDeclaring(t *testing.T) {
	ctx := createTestContext(t)
	ctx.Config.Network.Dev.CIDR = "10.0.20.0/24"

	err := NewProvisioner().Provision(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrCIDROverlap)
	assert.Equal(t, 0, ctx.Template.Len())
	assert.Empty(t, peeringRoutes(ctx.Template))
}

func TestProvisioner_SingleZone(t *testing.T) {
	ctx := createTestContext(t)
	ctx.Config.Network.MaxAZs = 1
	require.NoError(t, NewProvisioner().Provision(ctx))
	assert.Len(t, peeringRoutes(ctx.Template), 2)
}

func TestFabric_DuplicatePeering(t *testing.T) {
	ctx := createTestContext(t)
	dev, err := BuildNetwork(ctx, ctx.Config.Network.Dev, 2)
	require.NoError(t, err)
	emr, err := BuildNetwork(ctx, ctx.Config.Network.EMR, 2)
	require.NoError(t, err)

	fabric := NewFabric()
	_, err = fabric.Peer(ctx, emr, dev)
	require.NoError(t, err)

	_, err = fabric.Peer(ctx, dev, emr)
	assert.ErrorIs(t, err, ErrDuplicatePeering)
}

func TestArtifactBucket(t *testing.T) {
	ctx := createTestContext(t)
	ctx.Config.Storage.BucketName = "my-artifacts"

	ref, err := DeclareArtifactBucket(ctx)
	require.NoError(t, err)
	assert.Equal(t, BucketID, ctx.State.BucketID)

	bucket, _ := ctx.Template.Get(ref.ID)
	assert.Equal(t, topology.DeletionPolicyDelete, bucket.DeletionPolicy)
	assert.Equal(t, "my-artifacts", bucket.Properties["BucketName"])
	assert.Equal(t, map[string]any{"Status": "Enabled"}, bucket.Properties["VersioningConfiguration"])

	block := blockAllPublicAccess()
	for _, flag := range []*bool{block.BlockPublicAcls, block.BlockPublicPolicy, block.IgnorePublicAcls, block.RestrictPublicBuckets} {
		require.NotNil(t, flag)
		assert.True(t, *flag)
	}
	assert.True(t, ctx.Template.DependsOn(BucketAutoDeleteID, BucketID))

	doc, err := ctx.Template.Render()
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"RestrictPublicBuckets": true`)
}
