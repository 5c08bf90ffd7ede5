package infrastructure

import (
	"fmt"

	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/naming"
)

// BindIngress declares one TCP ingress rule on owner per source group.
// Rule IDs derive from (owner, source, port), so binding the same source
// twice declares nothing new.
func BindIngress(ctx *provisioning.Context, component, owner string, ownerGroup any, sources []provisioning.IngressSource, port int) ([]string, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid ingress port %d", port)
	}
	ids := make([]string, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		if src.Name == "" || src.Group == nil {
			return nil, fmt.Errorf("ingress source for %s needs a name and a group", owner)
		}
		id := naming.Ingress(owner, src.Name, port)
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := provisioning.Declare(ctx, component, topology.Resource{
			ID:   id,
			Kind: topology.KindSecurityGroupIngress,
			Properties: map[string]any{
				"GroupId":               ownerGroup,
				"IpProtocol":            "tcp",
				"FromPort":              port,
				"ToPort":                port,
				"SourceSecurityGroupId": src.Group,
				"Description":           fmt.Sprintf("from %s:%d", src.Name, port),
			},
		}); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
