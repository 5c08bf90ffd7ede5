package infrastructure

import (
	"fmt"
	"strings"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

const (
	phaseDevbox = "devbox"

	// DevboxStack groups the bastion outputs.
	DevboxStack = "DevBox"

	DevboxID                = "DevBox"
	DevboxSecurityGroupID   = "DevBoxSecurityGroup"
	DevboxRoleID            = "DevBoxInstanceRole"
	DevboxInstanceProfileID = "DevBoxInstanceProfile"
	DevboxKeyPairID         = "DevBoxKeyPair"

	// al2023Image resolves the latest Amazon Linux 2023 image at apply time.
	al2023Image = "{{resolve:ssm:/aws/service/ami-amazon-linux-latest/al2023-ami-kernel-default-x86_64}}"
)

// devboxUserData lets reverse tunnels bind on all interfaces so cluster
// workloads can reach the debugger through the bastion.
var devboxUserData = []string{
	"#!/bin/bash",
	"echo GatewayPorts yes | sudo tee -a /etc/ssh/sshd_config",
	"sudo systemctl restart sshd.service",
}

// DevboxProvisioner declares the remote-debugging bastion in the dev network.
type DevboxProvisioner struct{}

// NewDevboxProvisioner creates a new bastion provisioner.
func NewDevboxProvisioner() *DevboxProvisioner {
	return &DevboxProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *DevboxProvisioner) Name() string {
	return phaseDevbox
}

// Provision implements the provisioning.Phase interface.
func (p *DevboxProvisioner) Provision(ctx *provisioning.Context) error {
	dev := ctx.State.Dev
	if dev == nil || len(dev.PrivateSubnets) == 0 {
		return fmt.Errorf("dev network has not been declared")
	}
	cfg := ctx.Config

	sg, err := provisioning.Declare(ctx, phaseDevbox, topology.Resource{
		ID:   DevboxSecurityGroupID,
		Kind: topology.KindSecurityGroup,
		Properties: map[string]any{
			"GroupDescription": "Remote debugging bastion",
			"VpcId":            topology.RefTo(dev.ID),
			"SecurityGroupEgress": []any{map[string]any{
				"CidrIp":      anyIPv4,
				"IpProtocol":  "-1",
				"Description": "Allow all outbound traffic by default",
			}},
			"Tags": ctx.Tags(phaseDevbox).WithName(DevboxStack + "/" + DevboxSecurityGroupID).Build(),
		},
	})
	if err != nil {
		return err
	}

	if len(ctx.State.IngressSources) == 0 {
		provisioning.LogValidationWarning(ctx.Observer, "devbox", "no ingress sources; the debug port is unreachable")
	}
	rules, err := BindIngress(ctx, phaseDevbox, DevboxSecurityGroupID, topology.GetAtt(sg.ID, "GroupId"), ctx.State.IngressSources, config.DebugPort)
	if err != nil {
		return fmt.Errorf("failed to bind debug port ingress: %w", err)
	}

	role, err := provisioning.DeclareRole(ctx, phaseDevbox, provisioning.RoleSpec{
		ID:              DevboxRoleID,
		Trust:           iam.ServiceTrust("ec2.amazonaws.com"),
		ManagedPolicies: []string{"AmazonSSMManagedInstanceCore"},
		Tags:            ctx.Tags(phaseDevbox).Build(),
	})
	if err != nil {
		return err
	}
	profile, err := provisioning.Declare(ctx, phaseDevbox, topology.Resource{
		ID:         DevboxInstanceProfileID,
		Kind:       topology.KindInstanceProfile,
		Properties: map[string]any{"Roles": []any{role}},
	})
	if err != nil {
		return err
	}

	props := map[string]any{
		"ImageId":            al2023Image,
		"InstanceType":       cfg.Devbox.InstanceType,
		"SubnetId":           topology.RefTo(dev.PrivateSubnets[0].ID),
		"SecurityGroupIds":   []any{topology.GetAtt(sg.ID, "GroupId")},
		"IamInstanceProfile": profile,
		"UserData":           map[string]any{"Fn::Base64": strings.Join(devboxUserData, "\n")},
		"Tags":               ctx.Tags(phaseDevbox).WithName(DevboxStack + "/" + DevboxID).Build(),
	}

	if key := strings.TrimSpace(cfg.Devbox.SSHPublicKey); key != "" {
		keyPair, err := provisioning.Declare(ctx, phaseDevbox, topology.Resource{
			ID:   DevboxKeyPairID,
			Kind: topology.KindKeyPair,
			Properties: map[string]any{
				"KeyName":           cfg.Name + "-devbox",
				"PublicKeyMaterial": key,
			},
		})
		if err != nil {
			return err
		}
		props["KeyName"] = keyPair
	}

	instance, err := provisioning.Declare(ctx, phaseDevbox, topology.Resource{
		ID:         DevboxID,
		Kind:       topology.KindInstance,
		Properties: props,
		DependsOn:  []string{role.ID},
	})
	if err != nil {
		return err
	}
	ctx.State.DevboxID = instance.ID

	if err := provisioning.DeclareOutput(ctx, DevboxStack, "DevBoxID", "Bastion instance for SSM sessions and reverse tunnels", instance); err != nil {
		return err
	}
	if err := provisioning.DeclareOutput(ctx, DevboxStack, "DebugPort", "Port remote debuggers connect back to", config.DebugPort); err != nil {
		return err
	}

	ctx.Observer.Printf("[%s] Declared bastion with %d ingress rules on port %d", phaseDevbox, len(rules), config.DebugPort)
	return nil
}
