package emr

import (
	"fmt"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// Worker pool keys of the serverless application.
const (
	workerDriver   = "Driver"
	workerExecutor = "Executor"
)

// ServerlessProvisioner declares the serverless application in the EMR
// network and registers its security group as a bastion ingress source.
type ServerlessProvisioner struct{}

// NewServerlessProvisioner creates a new serverless application provisioner.
func NewServerlessProvisioner() *ServerlessProvisioner {
	return &ServerlessProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *ServerlessProvisioner) Name() string {
	return phaseServerless
}

// Provision implements the provisioning.Phase interface.
func (p *ServerlessProvisioner) Provision(ctx *provisioning.Context) error {
	network := ctx.State.EMR
	if network == nil || len(network.PrivateSubnets) == 0 {
		return fmt.Errorf("emr network has not been declared")
	}
	if ctx.State.BucketID == "" {
		return fmt.Errorf("artifact bucket has not been declared")
	}
	cfg := ctx.Config.Serverless

	sg, err := provisioning.Declare(ctx, phaseServerless, topology.Resource{
		ID:   ServerlessSGID,
		Kind: topology.KindSecurityGroup,
		Properties: map[string]any{
			"GroupDescription": "Serverless application workers",
			"VpcId":            topology.RefTo(network.ID),
			"SecurityGroupEgress": []any{map[string]any{
				"CidrIp":      "0.0.0.0/0",
				"IpProtocol":  "-1",
				"Description": "Allow all outbound traffic by default",
			}},
			"Tags": ctx.Tags(phaseServerless).WithName(ServerlessStack + "/" + ServerlessSGID).Build(),
		},
	})
	if err != nil {
		return err
	}
	groupID := topology.GetAtt(sg.ID, "GroupId")
	ctx.State.ServerlessSecGroup = sg.ID
	ctx.State.AddIngressSource(provisioning.IngressSource{Name: ServerlessSourceName, Group: groupID})

	app, err := provisioning.Declare(ctx, phaseServerless, topology.Resource{
		ID:   ServerlessAppID,
		Kind: topology.KindServerlessApplication,
		Properties: map[string]any{
			"Name":         cfg.Name,
			"ReleaseLabel": cfg.ReleaseLabel,
			"Type":         cfg.Type,
			"NetworkConfiguration": map[string]any{
				"SubnetIds":        network.PrivateSubnetRefs(),
				"SecurityGroupIds": []any{groupID},
			},
			"InitialCapacity": initialCapacity(cfg),
			"AutoStopConfiguration": map[string]any{
				"Enabled":            true,
				"IdleTimeoutMinutes": cfg.IdleTimeoutMinutes,
			},
			"Tags": ctx.Tags(phaseServerless).Build(),
		},
	})
	if err != nil {
		return err
	}
	ctx.State.ServerlessApp = app.ID

	role, err := provisioning.DeclareRole(ctx, phaseServerless, provisioning.RoleSpec{
		ID:         ServerlessJobRoleID,
		Trust:      iam.ServiceTrust("emr-serverless.amazonaws.com"),
		Statements: jobStatements(ctx),
		Tags:       ctx.Tags(phaseServerless).Build(),
	})
	if err != nil {
		return err
	}
	ctx.State.ServerlessJobRole = role.ID

	if err := provisioning.DeclareOutput(ctx, ServerlessStack, "ApplicationID", "Serverless application to submit job runs to", topology.GetAtt(app.ID, "ApplicationId")); err != nil {
		return err
	}
	if err := provisioning.DeclareOutput(ctx, ServerlessStack, "JobRoleArn", "Execution role for job runs", topology.GetAtt(role.ID, "Arn")); err != nil {
		return err
	}
	return provisioning.DeclareOutput(ctx, ServerlessStack, "SecurityGroupId", "Security group of the application workers", groupID)
}

// initialCapacity returns the pre-initialized worker pools, skipping pools
// with no workers.
func initialCapacity(cfg config.ServerlessConfig) []any {
	var pools []any
	for _, w := range []struct {
		key  string
		pool config.WorkerCapacity
	}{
		{workerDriver, cfg.Driver},
		{workerExecutor, cfg.Executor},
	} {
		if w.pool.Workers() == 0 {
			continue
		}
		pools = append(pools, map[string]any{
			"Key": w.key,
			"Value": map[string]any{
				"WorkerCount": w.pool.Workers(),
				"WorkerConfiguration": map[string]any{
					"Cpu":    w.pool.CPU,
					"Memory": w.pool.Memory,
				},
			},
		})
	}
	return pools
}
