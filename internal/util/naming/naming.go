package naming

import (
	"fmt"
	"strings"
	"unicode"
)

// LogicalID joins parts into a single identifier, keeping letters, digits
// and underscores.
func LogicalID(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		for _, r := range p {
			if r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

// Network-scoped identifiers.

func VPC(network string) string {
	return LogicalID(network)
}

func InternetGateway(network string) string {
	return LogicalID(network, "IGW")
}

func GatewayAttachment(network string) string {
	return LogicalID(network, "VPCGW")
}

// Subnet names a subnet by kind ("Public" or "Private") and 1-based position.
func Subnet(network, kind string, n int) string {
	return LogicalID(network, fmt.Sprintf("%sSubnet%d", kind, n))
}

// SubnetResource names a child of a subnet (RouteTable, NATGateway, EIP, ...).
func SubnetResource(network, kind string, n int, resource string) string {
	return LogicalID(Subnet(network, kind, n), resource)
}

// SubnetTag is the Name tag a subnet carries: "<stack>/<network>/<Kind>Subnet<n>".
func SubnetTag(stack, network, kind string, n int) string {
	return fmt.Sprintf("%s/%s/%sSubnet%d", stack, network, kind, n)
}

// SubnetTagPattern matches SubnetTag for every subnet of the given kind.
func SubnetTagPattern(stack, network, kind string) string {
	return fmt.Sprintf("%s/%s/%sSubnet*", stack, network, kind)
}

// PeeringRoute names the index-th peering route. One counter spans both
// directions so every route name is unique.
func PeeringRoute(index int) string {
	return fmt.Sprintf("VPCPeer_%d", index)
}

// Ingress names the rule admitting source into owner on port.
func Ingress(owner, source string, port int) string {
	return LogicalID(owner, "From", source, fmt.Sprintf("%d", port))
}

// Manifest names an orchestration object declared on cluster.
func Manifest(cluster, kind, name string) string {
	return LogicalID(cluster, "Manifest", kind, titleWords(name))
}

// AuthMapping names a role mapping entry in the identity map.
func AuthMapping(username string) string {
	return LogicalID("AuthMap", titleWords(username))
}

// titleWords turns "emr-containers" into "EmrContainers".
func titleWords(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, "")
}
