package cluster

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/k8s"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/naming"
)

// ErrConflictingCapacityPolicy is returned when a second autoscaling policy
// is declared on a cluster that already has one.
var ErrConflictingCapacityPolicy = errors.New("conflicting capacity policy")

// FargateSelector pins pods matching Namespace (and Labels, when set) to
// serverless capacity outside the autoscaler's control.
type FargateSelector struct {
	Namespace string
	Labels    map[string]string
}

// ReservedLanes returns the selectors of the system-critical lane: the
// autoscaler's own controller and cluster DNS.
func ReservedLanes() []FargateSelector {
	return []FargateSelector{
		{Namespace: KarpenterNamespace},
		{Namespace: k8s.KubeSystemNamespace, Labels: map[string]string{"k8s-app": "kube-dns"}},
	}
}

// karpenterControllerActions are what the autoscaler controller needs to
// launch and retire nodes.
var karpenterControllerActions = []string{
	"ec2:CreateFleet",
	"ec2:CreateLaunchTemplate",
	"ec2:CreateTags",
	"ec2:DeleteLaunchTemplate",
	"ec2:DescribeAvailabilityZones",
	"ec2:DescribeImages",
	"ec2:DescribeInstanceTypeOfferings",
	"ec2:DescribeInstanceTypes",
	"ec2:DescribeInstances",
	"ec2:DescribeLaunchTemplates",
	"ec2:DescribeSecurityGroups",
	"ec2:DescribeSpotPriceHistory",
	"ec2:DescribeSubnets",
	"ec2:RunInstances",
	"ec2:TerminateInstances",
	"eks:DescribeCluster",
	"iam:AddRoleToInstanceProfile",
	"iam:CreateInstanceProfile",
	"iam:DeleteInstanceProfile",
	"iam:GetInstanceProfile",
	"iam:RemoveRoleFromInstanceProfile",
	"iam:TagInstanceProfile",
	"pricing:GetProducts",
	"ssm:GetParameter",
}

// CapacityComposer declares the reserved serverless lane, the autoscaler
// and exactly one node-selection policy.
type CapacityComposer struct{}

// NewCapacityComposer creates a new capacity composer.
func NewCapacityComposer() *CapacityComposer {
	return &CapacityComposer{}
}

// Name implements the provisioning.Phase interface.
func (c *CapacityComposer) Name() string {
	return phaseCapacity
}

// Provision implements the provisioning.Phase interface.
func (c *CapacityComposer) Provision(ctx *provisioning.Context) error {
	if ctx.State.Cluster == nil {
		return provisioning.ErrClusterNotDeclared
	}
	capacity := ctx.Config.Capacity
	if err := capacity.Validate(); err != nil {
		return err
	}

	// 1. Reserved lane for DNS and the autoscaler controller
	if err := c.declareReservedLane(ctx); err != nil {
		return err
	}

	// 2. Autoscaler controller and node identity
	if err := c.declareAutoscaler(ctx); err != nil {
		return err
	}

	// 3. Node-selection policy
	switch capacity.Policy {
	case config.CapacityPolicyNodePool:
		return c.DeclareNodePool(ctx)
	case config.CapacityPolicySpot:
		return c.DeclareSpotProvisioner(ctx)
	default:
		return fmt.Errorf("%w: capacity policy %q", config.ErrUnknownEnumValue, capacity.Policy)
	}
}

func (c *CapacityComposer) declareReservedLane(ctx *provisioning.Context) error {
	role, err := provisioning.DeclareRole(ctx, phaseCapacity, provisioning.RoleSpec{
		ID:              FargateRoleID,
		Trust:           iam.ServiceTrust("eks-fargate-pods.amazonaws.com"),
		ManagedPolicies: []string{"AmazonEKSFargatePodExecutionRolePolicy"},
	})
	if err != nil {
		return err
	}

	lanes := ReservedLanes()
	selectors := make([]any, len(lanes))
	for i, lane := range lanes {
		sel := map[string]any{"Namespace": lane.Namespace}
		if len(lane.Labels) > 0 {
			labels := make([]any, 0, len(lane.Labels))
			for _, k := range sortedKeys(lane.Labels) {
				labels = append(labels, map[string]any{"Key": k, "Value": lane.Labels[k]})
			}
			sel["Labels"] = labels
		}
		selectors[i] = sel
	}

	profile, err := provisioning.Declare(ctx, phaseCapacity, topology.Resource{
		ID:   FargateProfileID,
		Kind: topology.KindFargateProfile,
		Properties: map[string]any{
			"ClusterName":         topology.RefTo(ctx.State.Cluster.ID),
			"FargateProfileName":  FargateProfileName,
			"PodExecutionRoleArn": topology.GetAtt(role.ID, "Arn"),
			"Subnets":             ctx.State.EMR.PrivateSubnetRefs(),
			"Selectors":           selectors,
		},
	})
	if err != nil {
		return err
	}

	if err := ctx.State.AuthMap.Add(k8s.RoleMapping{
		RoleARN:  topology.GetAtt(role.ID, "Arn").Token(),
		Username: "system:node:{{SessionName}}",
		Groups:   []string{k8s.GroupBootstrappers, k8s.GroupNodes, "system:node-proxier"},
	}); err != nil {
		return err
	}

	// Cluster DNS only schedules on the lane once its pods carry the
	// serverless compute-type annotation.
	_, err = provisioning.Declare(ctx, phaseCapacity, topology.Resource{
		ID:   CoreDNSPatchID,
		Kind: topology.KindPatch,
		Properties: map[string]any{
			"ClusterName":       topology.RefTo(ctx.State.Cluster.ID),
			"ResourceName":      "deployment/coredns",
			"ResourceNamespace": k8s.KubeSystemNamespace,
			"PatchType":         "strategic",
			"ApplyPatch":        computeTypePatch("fargate"),
			"RestorePatch":      computeTypePatch("ec2"),
		},
		DependsOn: []string{profile.ID},
	})
	return err
}

func computeTypePatch(computeType string) map[string]any {
	return map[string]any{
		"spec": map[string]any{
			"template": map[string]any{
				"metadata": map[string]any{
					"annotations": map[string]any{"eks.amazonaws.com/compute-type": computeType},
				},
			},
		},
	}
}

func (c *CapacityComposer) declareAutoscaler(ctx *provisioning.Context) error {
	cl := ctx.State.Cluster

	nodeRole, err := declareNodeRole(ctx, phaseCapacity, KarpenterNodeRole, "AmazonSSMManagedInstanceCore")
	if err != nil {
		return err
	}
	if _, err := provisioning.Declare(ctx, phaseCapacity, topology.Resource{
		ID:         KarpenterProfileID,
		Kind:       topology.KindInstanceProfile,
		Properties: map[string]any{"Roles": []any{nodeRole}},
	}); err != nil {
		return err
	}
	if err := ctx.State.AuthMap.AddNodeRole(topology.GetAtt(nodeRole.ID, "Arn").Token()); err != nil {
		return err
	}

	trust := iam.NewDocument()
	if err := iam.AddServiceAccountTrust(trust, cl.OIDCProvider(), cl.Issuer, KarpenterNamespace, KarpenterRelease, ServiceAccountAudience); err != nil {
		return err
	}
	controller, err := provisioning.DeclareRole(ctx, phaseCapacity, provisioning.RoleSpec{
		ID:    KarpenterControlRole,
		Trust: trust,
		Statements: []iam.Statement{
			iam.Allow(karpenterControllerActions),
			iam.Allow([]string{"iam:PassRole"}, topology.GetAtt(nodeRole.ID, "Arn")),
		},
	})
	if err != nil {
		return err
	}

	_, err = provisioning.DeclareHelmChart(ctx, phaseCapacity, provisioning.HelmChart{
		ID:              KarpenterChartID,
		Chart:           "karpenter",
		Repository:      KarpenterChartRepo,
		Version:         ctx.Config.Capacity.KarpenterVersion,
		Release:         KarpenterRelease,
		Namespace:       KarpenterNamespace,
		CreateNamespace: true,
		Values: map[string]any{
			"settings": map[string]any{
				"clusterName":     cl.Name,
				"clusterEndpoint": topology.GetAtt(cl.ID, "Endpoint").Token(),
			},
			"serviceAccount": map[string]any{
				"annotations": map[string]any{
					"eks.amazonaws.com/role-arn": topology.GetAtt(controller.ID, "Arn").Token(),
				},
			},
		},
		DependsOn: []string{FargateProfileID},
	})
	return err
}

// DeclareNodePool declares the node class and the node pool whose
// requirements are the conjunction of the configured category, architecture,
// generation and CPU predicates.
func (c *CapacityComposer) DeclareNodePool(ctx *provisioning.Context) error {
	if err := claimPolicy(ctx, config.CapacityPolicyNodePool); err != nil {
		return err
	}
	capacity := ctx.Config.Capacity

	nodeClass, err := k8s.EC2NodeClass(k8s.NodeClass{
		Name:        NodeClassName,
		SubnetTag:   naming.SubnetTagPattern(ctx.Config.Network.Stack, ctx.State.EMR.Name, "Private"),
		ClusterName: ctx.State.Cluster.Name,
		Role:        topology.RefTo(KarpenterNodeRole).Token(),
	})
	if err != nil {
		return err
	}
	classRef, err := DeclareObject(ctx, phaseCapacity, nodeClass, KarpenterChartID)
	if err != nil {
		return err
	}

	pool, err := k8s.NodePool(NodePoolName, NodeClassName, k8s.InstanceRequirements{
		Categories:    capacity.Categories,
		Architectures: capacity.Architectures,
		MinGeneration: capacity.MinGeneration,
		CPUs:          capacity.CPUs,
	})
	if err != nil {
		return err
	}
	if _, err := DeclareObject(ctx, phaseCapacity, pool, KarpenterChartID, classRef.ID); err != nil {
		return err
	}

	ctx.Observer.Printf("[%s] Node pool admits categories %v, arch %v, generation > %d, cpu %v",
		phaseCapacity, capacity.Categories, capacity.Architectures, capacity.MinGeneration, capacity.CPUs)
	return nil
}

// DeclareSpotProvisioner declares the spot-only provisioner with a CPU ceiling.
func (c *CapacityComposer) DeclareSpotProvisioner(ctx *provisioning.Context) error {
	if err := claimPolicy(ctx, config.CapacityPolicySpot); err != nil {
		return err
	}

	prov, err := k8s.Provisioner(k8s.SpotProvisioner{
		Name:        SpotProvisionerName,
		CPULimit:    ctx.Config.Capacity.SpotCPULimit,
		SubnetTag:   naming.SubnetTagPattern(ctx.Config.Network.Stack, ctx.State.EMR.Name, "Private"),
		ClusterName: ctx.State.Cluster.Name,
	})
	if err != nil {
		return err
	}
	if _, err := DeclareObject(ctx, phaseCapacity, prov, KarpenterChartID); err != nil {
		return err
	}

	ctx.Observer.Printf("[%s] Spot provisioner limited to %d CPUs", phaseCapacity, ctx.Config.Capacity.SpotCPULimit)
	return nil
}

// claimPolicy records policy as the cluster's capacity policy.
func claimPolicy(ctx *provisioning.Context, policy config.CapacityPolicy) error {
	if ctx.State.Cluster == nil {
		return provisioning.ErrClusterNotDeclared
	}
	if existing := ctx.State.CapacityPolicy; existing != "" {
		return fmt.Errorf("%w: %s is already declared, cannot add %s", ErrConflictingCapacityPolicy, existing, policy)
	}
	ctx.State.CapacityPolicy = string(policy)
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
