package infrastructure

import (
	"errors"
	"fmt"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/naming"
)

// PeeringID is the logical ID of the peering connection.
const PeeringID = "VPCPeer"

// ErrDuplicatePeering is returned when two networks are peered twice.
var ErrDuplicatePeering = errors.New("networks are already peered")

// Fabric tracks which network pairs are peered. A pair is unordered: peering
// A with B and then B with A is rejected.
type Fabric struct {
	peered map[[2]string]string
}

// NewFabric returns an empty fabric.
func NewFabric() *Fabric {
	return &Fabric{peered: make(map[[2]string]string)}
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Peer declares a peering connection from requester to accepter and one
// route per private subnet in each direction.
//
// Routes are named VPCPeer_<i> with a single counter that continues from the
// accepter pass into the requester pass, so names never collide. Overlapping
// CIDRs are rejected before anything is declared.
func (f *Fabric) Peer(ctx *provisioning.Context, requester, accepter *provisioning.Network) (string, error) {
	if requester == nil || accepter == nil {
		return "", fmt.Errorf("peering requires two networks")
	}
	if err := config.CheckNoOverlap(requester.CIDR, accepter.CIDR); err != nil {
		return "", fmt.Errorf("cannot peer %s with %s: %w", requester.Name, accepter.Name, err)
	}
	key := pairKey(requester.ID, accepter.ID)
	if existing, ok := f.peered[key]; ok {
		return "", fmt.Errorf("%w: %s and %s via %s", ErrDuplicatePeering, requester.Name, accepter.Name, existing)
	}

	peering, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:   PeeringID,
		Kind: topology.KindPeeringConnection,
		Properties: map[string]any{
			"VpcId":     topology.RefTo(requester.ID),
			"PeerVpcId": topology.RefTo(accepter.ID),
			"Tags":      ctx.Tags(phaseNetwork).WithName(requester.Name + " to " + accepter.Name).Build(),
		},
	})
	if err != nil {
		return "", err
	}
	f.peered[key] = peering.ID

	next := 0
	if next, err = propagateRoutes(ctx, accepter, requester.CIDR, peering, next); err != nil {
		return "", err
	}
	if next, err = propagateRoutes(ctx, requester, accepter.CIDR, peering, next); err != nil {
		return "", err
	}

	ctx.Observer.Printf("[%s] Peered %s with %s (%d routes)", phaseNetwork, requester.Name, accepter.Name, next)
	return peering.ID, nil
}

// propagateRoutes declares a route to destination through peering on every
// private subnet of from, numbering routes from next. It returns the next
// unused index.
func propagateRoutes(ctx *provisioning.Context, from *provisioning.Network, destination string, peering topology.Ref, next int) (int, error) {
	for _, subnet := range from.PrivateSubnets {
		if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
			ID:   naming.PeeringRoute(next),
			Kind: topology.KindRoute,
			Properties: map[string]any{
				"DestinationCidrBlock":   destination,
				"RouteTableId":           topology.RefTo(subnet.RouteTable),
				"VpcPeeringConnectionId": peering,
			},
		}); err != nil {
			return next, err
		}
		next++
	}
	return next, nil
}
