package cluster

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/k8s"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning/infrastructure"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

const testAccount = "123456789012"

// networkContext returns a context whose networks are already declared.
func networkContext(t *testing.T, mutate ...func(*config.Config)) *provisioning.Context {
	t.Helper()
	cfg := config.Default(testAccount)
	for _, m := range mutate {
		m(cfg)
	}
	ctx := provisioning.NewContext(context.Background(), cfg, logr.Discard())
	require.NoError(t, infrastructure.NewProvisioner().Provision(ctx))
	return ctx
}

// clusterContext returns a context with the cluster phase applied.
func clusterContext(t *testing.T, mutate ...func(*config.Config)) *provisioning.Context {
	t.Helper()
	ctx := networkContext(t, mutate...)
	require.NoError(t, NewProvisioner().Provision(ctx))
	return ctx
}

// manifestObject returns the single object carried by a manifest resource.
func manifestObject(t *testing.T, ctx *provisioning.Context, id string) map[string]interface{} {
	t.Helper()
	res, ok := ctx.Template.Get(id)
	require.True(t, ok, "manifest %s not declared", id)
	require.Equal(t, topology.KindManifest, res.Kind)
	objs := res.Properties["Manifest"].([]any)
	require.Len(t, objs, 1)
	return objs[0].(map[string]interface{})
}

func TestProvisioner_Name(t *testing.T) {
	assert.Equal(t, "cluster", NewProvisioner().Name())
}

func TestProvisioner_RequiresNetwork(t *testing.T) {
	ctx := provisioning.NewContext(context.Background(), config.Default(testAccount), logr.Discard())
	assert.Error(t, NewProvisioner().Provision(ctx))
}

func TestProvisioner_Cluster(t *testing.T) {
	ctx := clusterContext(t)

	cluster, ok := ctx.Template.Get(ClusterID)
	require.True(t, ok)
	assert.Equal(t, "data-team", cluster.Properties["Name"])
	assert.Equal(t, "1.28", cluster.Properties["Version"])
	vpcCfg := cluster.Properties["ResourcesVpcConfig"].(map[string]any)
	assert.Equal(t, true, vpcCfg["EndpointPublicAccess"])
	assert.Equal(t, true, vpcCfg["EndpointPrivateAccess"])
	assert.Equal(t, ctx.State.EMR.PrivateSubnetRefs(), vpcCfg["SubnetIds"])

	require.NotNil(t, ctx.State.Cluster)
	assert.Equal(t, "${EksForSpark.OpenIdConnectIssuer}", ctx.State.Cluster.Issuer)
	assert.True(t, ctx.Template.DependsOn(OIDCProviderID, ClusterID))

	nodegroup, ok := ctx.Template.Get(NodegroupID)
	require.True(t, ok)
	scaling := nodegroup.Properties["ScalingConfig"].(map[string]any)
	assert.Equal(t, 1, scaling["DesiredSize"])

	_, ok = ctx.State.AuthMap.Lookup("${" + NodegroupRoleID + ".Arn}")
	assert.True(t, ok, "node group role should be mapped")

	require.Len(t, ctx.State.IngressSources, 1)
	assert.Equal(t, topology.GetAtt(ClusterID, "ClusterSecurityGroupId"), ctx.State.IngressSources[0].Group)

	for _, key := range []string{"EKSStack.ClusterName", "EKSStack.ClusterSecurityGroupId", "EKSStack.OIDCProviderArn", "EKSStack.ConfigCommand"} {
		_, ok := ctx.Template.Output(key)
		assert.True(t, ok, key)
	}
}

func intPtr(v int) *int { return &v }

func TestProvisioner_NoDefaultCapacity(t *testing.T) {
	ctx := clusterContext(t, func(c *config.Config) { c.Cluster.DefaultCapacity = intPtr(0) })
	assert.False(t, ctx.Template.Has(NodegroupID))
	assert.Equal(t, 0, ctx.State.AuthMap.Len())
}

func TestAccess_ClusterAdmin(t *testing.T) {
	ctx := clusterContext(t)

	sa := manifestObject(t, ctx, "EksForSparkManifestServiceAccountKubeSystemEksAdmin")
	assert.Equal(t, "eks-admin", (&unstructured.Unstructured{Object: sa}).GetName())

	crb := &unstructured.Unstructured{Object: manifestObject(t, ctx, "EksForSparkManifestClusterRoleBindingEksAdmin")}
	role, _, _ := unstructured.NestedString(crb.Object, "roleRef", "name")
	assert.Equal(t, "cluster-admin", role)
}

func TestAccess_AdminRoleOptional(t *testing.T) {
	without := clusterContext(t)
	for _, m := range without.State.AuthMap.Roles() {
		assert.NotContains(t, m.Groups, k8s.GroupMasters)
	}

	with := clusterContext(t, func(c *config.Config) { c.Cluster.AdminRoleName = "Admin" })
	m, ok := with.State.AuthMap.Lookup("arn:aws:iam::123456789012:role/Admin")
	require.True(t, ok)
	assert.Equal(t, []string{k8s.GroupMasters}, m.Groups)
}

func TestAccess_Dashboard(t *testing.T) {
	assert.False(t, clusterContext(t).Template.Has(DashboardChartID))

	ctx := clusterContext(t, func(c *config.Config) { c.Cluster.Dashboard = true })
	chart, ok := ctx.Template.Get(DashboardChartID)
	require.True(t, ok)
	assert.Equal(t, "kubernetes-dashboard", chart.Properties["Chart"])
	assert.Equal(t, DashboardRepo, chart.Properties["Repository"])
	values := chart.Properties["Values"].(map[string]any)
	assert.Equal(t, []string{"--token-ttl=0"}, values["extraArgs"])
}

func TestAccess_Airflow(t *testing.T) {
	ctx := clusterContext(t, func(c *config.Config) { c.Cluster.AirflowNamespace = "airflow" })

	require.True(t, ctx.Template.Has(AirflowRoleID))
	trust, ok := ctx.State.Trust(AirflowRoleID)
	require.True(t, ok)
	require.Len(t, trust.Statement, 1)
	assert.True(t, trust.AllowsWebIdentity(topology.RefTo(OIDCProviderID), map[string]string{
		"${EksForSpark.OpenIdConnectIssuer}:sub": "system:serviceaccount:airflow:airflow-emr-containers",
		"${EksForSpark.OpenIdConnectIssuer}:aud": ServiceAccountAudience,
	}))
	assert.False(t, trust.AllowsWebIdentity(topology.RefTo(OIDCProviderID), map[string]string{
		"${EksForSpark.OpenIdConnectIssuer}:sub": "system:serviceaccount:airflow:other",
		"${EksForSpark.OpenIdConnectIssuer}:aud": ServiceAccountAudience,
	}))

	policy, ok := ctx.Template.Get(AirflowRoleID + "DefaultPolicy")
	require.True(t, ok)
	doc := policy.Properties["PolicyDocument"].(*iam.Document)
	assert.Equal(t, AirflowJobActions, doc.Statement[0].Action)

	saID := "EksForSparkManifestServiceAccountAirflowAirflowEmrContainers"
	sa := &unstructured.Unstructured{Object: manifestObject(t, ctx, saID)}
	assert.Equal(t, "${AirflowServiceAccountRole.Arn}", sa.GetAnnotations()["eks.amazonaws.com/role-arn"])
	assert.True(t, ctx.Template.DependsOn(saID, AirflowRoleID))
	assert.True(t, ctx.Template.DependsOn(saID, "EksForSparkManifestNamespaceAirflow"))
}
