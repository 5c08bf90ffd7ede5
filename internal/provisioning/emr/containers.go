package emr

import (
	"fmt"

	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/k8s"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning/cluster"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// NamespaceBinding is the namespace a virtual cluster schedules into and the
// RBAC objects that let the service manage pods there.
type NamespaceBinding struct {
	NamespaceID string
	RoleID      string
	BindingID   string
}

// ContainersProvisioner declares the virtual cluster, its namespace binding
// and the federated job role.
type ContainersProvisioner struct{}

// NewContainersProvisioner creates a new virtual cluster provisioner.
func NewContainersProvisioner() *ContainersProvisioner {
	return &ContainersProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *ContainersProvisioner) Name() string {
	return phaseContainers
}

// Provision implements the provisioning.Phase interface.
func (p *ContainersProvisioner) Provision(ctx *provisioning.Context) error {
	if ctx.State.Cluster == nil {
		return provisioning.ErrClusterNotDeclared
	}
	if ctx.State.BucketID == "" {
		return fmt.Errorf("artifact bucket has not been declared")
	}
	cfg := ctx.Config.Containers

	binding, err := BindNamespace(ctx, cfg.Namespace)
	if err != nil {
		return fmt.Errorf("failed to bind namespace %s: %w", cfg.Namespace, err)
	}

	serviceRole := iam.RoleARN(ctx.Partition(), ctx.Config.Account, iam.EMRContainersServiceRole)
	if err := ctx.State.AuthMap.Add(k8s.RoleMapping{RoleARN: serviceRole, Username: ContainersUser}); err != nil {
		return fmt.Errorf("failed to map the service-linked role: %w", err)
	}

	role, err := declareContainersJobRole(ctx)
	if err != nil {
		return err
	}
	ctx.State.ContainersJobRole = role.ID

	vc, err := provisioning.Declare(ctx, phaseContainers, topology.Resource{
		ID:   VirtualClusterID,
		Kind: topology.KindVirtualCluster,
		Properties: map[string]any{
			"Name": cfg.VirtualClusterName,
			"ContainerProvider": map[string]any{
				"Id":   topology.RefTo(ctx.State.Cluster.ID),
				"Type": containersProvider,
				"Info": map[string]any{
					"EksInfo": map[string]any{"Namespace": cfg.Namespace},
				},
			},
			"Tags": ctx.Tags(phaseContainers).Build(),
		},
		DependsOn: []string{binding.NamespaceID, binding.BindingID},
	})
	if err != nil {
		return err
	}
	ctx.State.VirtualClusterID = vc.ID
	ctx.State.NamespaceChain = []string{binding.NamespaceID, binding.RoleID, binding.BindingID}
	ctx.State.AuthConsumers = append(ctx.State.AuthConsumers, vc.ID)

	if err := provisioning.DeclareOutput(ctx, ContainersStack, "VirtualClusterID", "Virtual cluster to submit job runs to", topology.GetAtt(vc.ID, "Id")); err != nil {
		return err
	}
	return provisioning.DeclareOutput(ctx, ContainersStack, "JobRoleArn", "Execution role for job runs", topology.GetAtt(role.ID, "Arn"))
}

// BindNamespace declares namespace, a Role granting the service what it
// needs to run jobs there, and a RoleBinding to the service user. Each
// object depends on the one before it.
func BindNamespace(ctx *provisioning.Context, namespace string) (NamespaceBinding, error) {
	ns, err := k8s.Namespace(namespace)
	if err != nil {
		return NamespaceBinding{}, err
	}
	nsRef, err := cluster.DeclareObject(ctx, phaseContainers, ns)
	if err != nil {
		return NamespaceBinding{}, err
	}

	role, err := k8s.Role(namespace, ContainersRoleName, k8s.EMRContainersRules())
	if err != nil {
		return NamespaceBinding{}, err
	}
	roleRef, err := cluster.DeclareObject(ctx, phaseContainers, role, nsRef.ID)
	if err != nil {
		return NamespaceBinding{}, err
	}

	rb, err := k8s.RoleBinding(namespace, ContainersRoleName, ContainersRoleName, k8s.UserSubject(ContainersUser))
	if err != nil {
		return NamespaceBinding{}, err
	}
	rbRef, err := cluster.DeclareObject(ctx, phaseContainers, rb, roleRef.ID)
	if err != nil {
		return NamespaceBinding{}, err
	}

	return NamespaceBinding{NamespaceID: nsRef.ID, RoleID: roleRef.ID, BindingID: rbRef.ID}, nil
}

func declareContainersJobRole(ctx *provisioning.Context) (topology.Ref, error) {
	c := ctx.State.Cluster
	cfg := ctx.Config.Containers

	trust := iam.ServiceTrust("ec2.amazonaws.com")
	if err := iam.AddFederatedTrust(trust, iam.Federation{
		ProviderARN: c.OIDCProvider(),
		Issuer:      c.Issuer,
		Namespace:   cfg.Namespace,
		Account:     ctx.Config.Account,
		Prefix:      cfg.ServiceAccountPrefix,
		Audience:    cfg.Audience,
		Strict:      cfg.StrictTrust,
	}); err != nil {
		return topology.Ref{}, fmt.Errorf("failed to build job role trust: %w", err)
	}
	if err := iam.ValidateFederatedTrust(trust, c.Issuer); err != nil {
		return topology.Ref{}, err
	}

	return provisioning.DeclareRole(ctx, phaseContainers, provisioning.RoleSpec{
		ID:              ContainersJobRoleID,
		Trust:           trust,
		ManagedPolicies: containersManagedPolicies,
		Statements:      jobStatements(ctx),
		Tags:            ctx.Tags(phaseContainers).Build(),
	})
}
