package cluster

import (
	"fmt"

	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/tags"
)

// Provisioner declares the orchestration cluster, its identity provider,
// the default node group and the access bindings.
type Provisioner struct{}

// NewProvisioner creates a new cluster provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phaseCluster
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.EMR == nil {
		return fmt.Errorf("EMR network has not been declared")
	}

	// 1. Control plane
	if err := p.declareCluster(ctx); err != nil {
		return err
	}

	// 2. Identity provider for service-account federation
	if err := p.declareOIDCProvider(ctx); err != nil {
		return err
	}

	// 3. Default capacity
	if err := p.declareDefaultNodegroup(ctx); err != nil {
		return err
	}

	// 4. Access bindings and optional add-ons
	if err := DeclareAccess(ctx); err != nil {
		return err
	}

	return p.declareOutputs(ctx)
}

func (p *Provisioner) declareCluster(ctx *provisioning.Context) error {
	cfg := ctx.Config.Cluster
	emr := ctx.State.EMR

	role, err := provisioning.DeclareRole(ctx, phaseCluster, provisioning.RoleSpec{
		ID:              ClusterRoleID,
		Trust:           iam.ServiceTrust("eks.amazonaws.com"),
		ManagedPolicies: []string{"AmazonEKSClusterPolicy"},
	})
	if err != nil {
		return err
	}

	sg, err := provisioning.Declare(ctx, phaseCluster, topology.Resource{
		ID:   ControlPlaneSGID,
		Kind: topology.KindSecurityGroup,
		Properties: map[string]any{
			"GroupDescription": "EKS Control Plane Security Group",
			"VpcId":            topology.RefTo(emr.ID),
			"SecurityGroupEgress": []any{map[string]any{
				"CidrIp":      "0.0.0.0/0",
				"IpProtocol":  "-1",
				"Description": "Allow all outbound traffic by default",
			}},
		},
	})
	if err != nil {
		return err
	}

	cluster, err := provisioning.Declare(ctx, phaseCluster, topology.Resource{
		ID:   ClusterID,
		Kind: topology.KindCluster,
		Properties: map[string]any{
			"Name":    cfg.Name,
			"Version": cfg.Version,
			"RoleArn": topology.GetAtt(role.ID, "Arn"),
			"ResourcesVpcConfig": map[string]any{
				"SubnetIds":             emr.PrivateSubnetRefs(),
				"SecurityGroupIds":      []any{topology.GetAtt(sg.ID, "GroupId")},
				"EndpointPublicAccess":  true,
				"EndpointPrivateAccess": true,
			},
			"Tags": ctx.Tags(phaseCluster).Merge(map[string]string{tags.KeyClusterName: cfg.Name}).Build(),
		},
	})
	if err != nil {
		return err
	}

	ctx.State.Cluster = &provisioning.ClusterState{
		ID:             cluster.ID,
		Name:           cfg.Name,
		SecurityGroup:  topology.GetAtt(cluster.ID, "ClusterSecurityGroupId"),
		OIDCProviderID: OIDCProviderID,
		Issuer:         topology.GetAtt(cluster.ID, "OpenIdConnectIssuer").Token(),
	}
	ctx.State.AddIngressSource(provisioning.IngressSource{
		Name:  "EksClusterSecurityGroup",
		Group: ctx.State.Cluster.SecurityGroup,
	})
	return nil
}

func (p *Provisioner) declareOIDCProvider(ctx *provisioning.Context) error {
	_, err := provisioning.Declare(ctx, phaseCluster, topology.Resource{
		ID:   OIDCProviderID,
		Kind: topology.KindOIDCProvider,
		Properties: map[string]any{
			"Url":          topology.GetAtt(ClusterID, "OpenIdConnectIssuerUrl"),
			"ClientIdList": []string{ServiceAccountAudience},
		},
	})
	return err
}

func (p *Provisioner) declareDefaultNodegroup(ctx *provisioning.Context) error {
	cfg := ctx.Config.Cluster
	size := cfg.NodeCount()
	if size == 0 {
		ctx.Observer.Printf("[%s] Default capacity is 0, skipping node group", phaseCluster)
		return nil
	}

	role, err := declareNodeRole(ctx, phaseCluster, NodegroupRoleID)
	if err != nil {
		return err
	}

	if _, err := provisioning.Declare(ctx, phaseCluster, topology.Resource{
		ID:   NodegroupID,
		Kind: topology.KindNodegroup,
		Properties: map[string]any{
			"ClusterName":   topology.RefTo(ClusterID),
			"NodeRole":      topology.GetAtt(role.ID, "Arn"),
			"Subnets":       ctx.State.EMR.PrivateSubnetRefs(),
			"InstanceTypes": []string{cfg.DefaultInstanceType},
			"ScalingConfig": map[string]any{
				"MinSize":     size,
				"MaxSize":     size,
				"DesiredSize": size,
			},
			"ForceUpdateEnabled": true,
		},
	}); err != nil {
		return err
	}

	return ctx.State.AuthMap.AddNodeRole(topology.GetAtt(role.ID, "Arn").Token())
}

// declareNodeRole declares a worker node role.
func declareNodeRole(ctx *provisioning.Context, component, id string, extraManaged ...string) (topology.Ref, error) {
	managed := append([]string{
		"AmazonEKSWorkerNodePolicy",
		"AmazonEKS_CNI_Policy",
		"AmazonEC2ContainerRegistryReadOnly",
	}, extraManaged...)
	return provisioning.DeclareRole(ctx, component, provisioning.RoleSpec{
		ID:              id,
		Trust:           iam.ServiceTrust("ec2.amazonaws.com"),
		ManagedPolicies: managed,
	})
}

func (p *Provisioner) declareOutputs(ctx *provisioning.Context) error {
	c := ctx.State.Cluster
	outputs := []struct {
		name  string
		value any
	}{
		{"ClusterName", topology.RefTo(c.ID)},
		{"ClusterSecurityGroupId", c.SecurityGroup},
		{"OIDCProviderArn", c.OIDCProvider()},
		{"ConfigCommand", fmt.Sprintf("aws eks update-kubeconfig --name %s --region %s", c.Name, ctx.Config.Region)},
	}
	for _, o := range outputs {
		if err := provisioning.DeclareOutput(ctx, Stack, o.name, "", o.value); err != nil {
			return err
		}
	}
	return nil
}
