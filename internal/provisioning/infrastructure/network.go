package infrastructure

import (
	"fmt"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/naming"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/tags"
)

const phaseNetwork = "network"

// anyIPv4 is the default route destination.
const anyIPv4 = "0.0.0.0/0"

// availabilityZone selects the index-th zone of the region at apply time.
func availabilityZone(index int) map[string]any {
	return map[string]any{
		"Fn::Select": []any{index, map[string]any{"Fn::GetAZs": ""}},
	}
}

// BuildNetwork declares a network spanning azs zones, each with one public
// subnet (internet gateway route and NAT gateway) and one private subnet
// whose default route egresses through the NAT of its zone.
//
// The CIDR is split evenly; public subnets take the lower blocks and private
// subnets the blocks after them.
func BuildNetwork(ctx *provisioning.Context, vpc config.VPCConfig, azs int) (*provisioning.Network, error) {
	blocks, err := config.SplitCIDR(vpc.CIDR, 2*azs)
	if err != nil {
		return nil, fmt.Errorf("failed to plan subnets for %s: %w", vpc.Name, err)
	}

	stack := ctx.Config.Network.Stack
	network := &provisioning.Network{
		Name: vpc.Name,
		CIDR: vpc.CIDR,
		ID:   naming.VPC(vpc.Name),
	}

	vpcRef, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:   network.ID,
		Kind: topology.KindVPC,
		Properties: map[string]any{
			"CidrBlock":          vpc.CIDR,
			"EnableDnsHostnames": true,
			"EnableDnsSupport":   true,
			"InstanceTenancy":    "default",
			"Tags":               ctx.Tags(phaseNetwork).WithName(stack + "/" + vpc.Name).Build(),
		},
	})
	if err != nil {
		return nil, err
	}

	igwID := naming.InternetGateway(vpc.Name)
	if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:   igwID,
		Kind: topology.KindInternetGateway,
		Properties: map[string]any{
			"Tags": ctx.Tags(phaseNetwork).WithName(stack + "/" + vpc.Name).Build(),
		},
	}); err != nil {
		return nil, err
	}
	attachID := naming.GatewayAttachment(vpc.Name)
	if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:   attachID,
		Kind: topology.KindGatewayAttachment,
		Properties: map[string]any{
			"VpcId":             vpcRef,
			"InternetGatewayId": topology.RefTo(igwID),
		},
	}); err != nil {
		return nil, err
	}

	for i := 0; i < azs; i++ {
		public, err := declareSubnet(ctx, network, provisioning.SubnetPublic, i, blocks[i])
		if err != nil {
			return nil, err
		}
		if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
			ID:   naming.SubnetResource(vpc.Name, provisioning.SubnetPublic, i+1, "DefaultRoute"),
			Kind: topology.KindRoute,
			Properties: map[string]any{
				"RouteTableId":         topology.RefTo(public.RouteTable),
				"DestinationCidrBlock": anyIPv4,
				"GatewayId":            topology.RefTo(igwID),
			},
			DependsOn: []string{attachID},
		}); err != nil {
			return nil, err
		}

		eipID := naming.SubnetResource(vpc.Name, provisioning.SubnetPublic, i+1, "EIP")
		if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
			ID:   eipID,
			Kind: topology.KindEIP,
			Properties: map[string]any{
				"Domain": "vpc",
				"Tags":   subnetTags(ctx, stack, vpc.Name, provisioning.SubnetPublic, i+1).Build(),
			},
		}); err != nil {
			return nil, err
		}
		natID := naming.SubnetResource(vpc.Name, provisioning.SubnetPublic, i+1, "NATGateway")
		if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
			ID:   natID,
			Kind: topology.KindNatGateway,
			Properties: map[string]any{
				"SubnetId":     topology.RefTo(public.ID),
				"AllocationId": topology.GetAtt(eipID, "AllocationId"),
				"Tags":         subnetTags(ctx, stack, vpc.Name, provisioning.SubnetPublic, i+1).Build(),
			},
			DependsOn: []string{naming.SubnetResource(vpc.Name, provisioning.SubnetPublic, i+1, "DefaultRoute")},
		}); err != nil {
			return nil, err
		}
		network.PublicSubnets = append(network.PublicSubnets, public)

		private, err := declareSubnet(ctx, network, provisioning.SubnetPrivate, i, blocks[azs+i])
		if err != nil {
			return nil, err
		}
		if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
			ID:   naming.SubnetResource(vpc.Name, provisioning.SubnetPrivate, i+1, "DefaultRoute"),
			Kind: topology.KindRoute,
			Properties: map[string]any{
				"RouteTableId":         topology.RefTo(private.RouteTable),
				"DestinationCidrBlock": anyIPv4,
				"NatGatewayId":         topology.RefTo(natID),
			},
		}); err != nil {
			return nil, err
		}
		network.PrivateSubnets = append(network.PrivateSubnets, private)
	}

	ctx.Observer.Printf("[%s] Declared %s (%s) with %d public and %d private subnets",
		phaseNetwork, vpc.Name, vpc.CIDR, len(network.PublicSubnets), len(network.PrivateSubnets))
	return network, nil
}

// declareSubnet declares a subnet, its route table and the association.
// az is zero-based; names are one-based.
func declareSubnet(ctx *provisioning.Context, network *provisioning.Network, kind string, az int, cidr string) (provisioning.Subnet, error) {
	n := az + 1
	subnet := provisioning.Subnet{
		ID:         naming.Subnet(network.Name, kind, n),
		Kind:       kind,
		AZ:         az,
		CIDR:       cidr,
		RouteTable: naming.SubnetResource(network.Name, kind, n, "RouteTable"),
	}
	stack := ctx.Config.Network.Stack

	if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:   subnet.ID,
		Kind: topology.KindSubnet,
		Properties: map[string]any{
			"VpcId":               topology.RefTo(network.ID),
			"CidrBlock":           cidr,
			"AvailabilityZone":    availabilityZone(az),
			"MapPublicIpOnLaunch": kind == provisioning.SubnetPublic,
			"Tags":                subnetTags(ctx, stack, network.Name, kind, n).Build(),
		},
	}); err != nil {
		return provisioning.Subnet{}, err
	}
	if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:   subnet.RouteTable,
		Kind: topology.KindRouteTable,
		Properties: map[string]any{
			"VpcId": topology.RefTo(network.ID),
			"Tags":  subnetTags(ctx, stack, network.Name, kind, n).Build(),
		},
	}); err != nil {
		return provisioning.Subnet{}, err
	}
	if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:   naming.SubnetResource(network.Name, kind, n, "RouteTableAssociation"),
		Kind: topology.KindRouteTableAssociation,
		Properties: map[string]any{
			"RouteTableId": topology.RefTo(subnet.RouteTable),
			"SubnetId":     topology.RefTo(subnet.ID),
		},
	}); err != nil {
		return provisioning.Subnet{}, err
	}
	return subnet, nil
}

func subnetTags(ctx *provisioning.Context, stack, network, kind string, n int) *tags.Builder {
	return ctx.Tags(phaseNetwork).
		WithName(naming.SubnetTag(stack, network, kind, n)).
		Merge(map[string]string{"emrdebug:subnet-type": kind})
}
