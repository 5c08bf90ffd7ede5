package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

func declareSourceGroups(t *testing.T, ctx *provisioning.Context) {
	t.Helper()
	for _, id := range []string{"ClusterSG", "ServerlessSG"} {
		_, err := ctx.Template.Add(topology.Resource{ID: id, Kind: topology.KindSecurityGroup})
		require.NoError(t, err)
		ctx.State.AddIngressSource(provisioning.IngressSource{Name: id, Group: topology.GetAtt(id, "GroupId")})
	}
}

func TestBindIngress(t *testing.T) {
	ctx := createTestContext(t)
	declareSourceGroups(t, ctx)
	_, err := ctx.Template.Add(topology.Resource{ID: "Owner", Kind: topology.KindSecurityGroup})
	require.NoError(t, err)

	ids, err := BindIngress(ctx, "test", "Owner", topology.GetAtt("Owner", "GroupId"), ctx.State.IngressSources, 3535)
	require.NoError(t, err)
	assert.Equal(t, []string{"OwnerFromClusterSG3535", "OwnerFromServerlessSG3535"}, ids)

	rules := ctx.Template.ResourcesOfKind(topology.KindSecurityGroupIngress)
	require.Len(t, rules, 2)
	for _, r := range rules {
		assert.Equal(t, 3535, r.Properties["FromPort"])
		assert.Equal(t, 3535, r.Properties["ToPort"])
		assert.Equal(t, "tcp", r.Properties["IpProtocol"])
	}

	// Binding again is a no-op.
	_, err = BindIngress(ctx, "test", "Owner", topology.GetAtt("Owner", "GroupId"), append(ctx.State.IngressSources, ctx.State.IngressSources...), 3535)
	require.NoError(t, err)
	assert.Len(t, ctx.Template.ResourcesOfKind(topology.KindSecurityGroupIngress), 2)

	_, err = BindIngress(ctx, "test", "Owner", "sg-1", nil, 0)
	assert.Error(t, err)
}

func TestDevboxProvisioner(t *testing.T) {
	ctx := createTestContext(t)
	require.NoError(t, NewProvisioner().Provision(ctx))
	declareSourceGroups(t, ctx)

	require.NoError(t, NewDevboxProvisioner().Provision(ctx))

	instance, ok := ctx.Template.Get(DevboxID)
	require.True(t, ok)
	assert.Equal(t, "c6a.large", instance.Properties["InstanceType"])
	assert.Equal(t, topology.RefTo("DevVPCPrivateSubnet1"), instance.Properties["SubnetId"])
	userData := instance.Properties["UserData"].(map[string]any)["Fn::Base64"].(string)
	assert.Contains(t, userData, "GatewayPorts yes")
	assert.Contains(t, userData, "systemctl restart sshd")
	assert.NotContains(t, instance.Properties, "KeyName")

	assert.Len(t, ctx.Template.ResourcesOfKind(topology.KindSecurityGroupIngress), 2)
	assert.True(t, ctx.Template.DependsOn(DevboxID, DevboxRoleID))

	out, ok := ctx.Template.Output("DevBox.DevBoxID")
	require.True(t, ok)
	assert.Equal(t, topology.RefTo(DevboxID), out.Value)
	port, ok := ctx.Template.Output("DevBox.DebugPort")
	require.True(t, ok)
	assert.Equal(t, 3535, port.Value)
}

func TestDevboxProvisioner_KeyPair(t *testing.T) {
	ctx := createTestContext(t)
	ctx.Config.Devbox.SSHPublicKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIBxvUvR7G7nRzI4J8bZkA9rYqTLXkW3gB9p7mW2hJ8sQ dev@example"
	require.NoError(t, NewProvisioner().Provision(ctx))

	require.NoError(t, NewDevboxProvisioner().Provision(ctx))
	assert.True(t, ctx.Template.DependsOn(DevboxID, DevboxKeyPairID))
}

func TestDevboxProvisioner_RequiresNetwork(t *testing.T) {
	ctx := createTestContext(t)
	assert.Error(t, NewDevboxProvisioner().Provision(ctx))
}
