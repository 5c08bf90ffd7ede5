package provisioning

import (
	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/k8s"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// Subnet kinds.
const (
	SubnetPublic  = "Public"
	SubnetPrivate = "Private"
)

// Subnet is a declared subnet and the route table it is associated with.
type Subnet struct {
	ID         string
	Kind       string
	AZ         int
	CIDR       string
	RouteTable string
}

// Network is a declared network and its subnets.
type Network struct {
	// Name is the display name, e.g. "EMR VPC".
	Name string
	CIDR string
	// ID is the logical ID of the network resource.
	ID string

	PublicSubnets  []Subnet
	PrivateSubnets []Subnet
}

// PrivateSubnetRefs returns references to the private subnets in order.
func (n *Network) PrivateSubnetRefs() []any {
	return subnetRefs(n.PrivateSubnets)
}

// PublicSubnetRefs returns references to the public subnets in order.
func (n *Network) PublicSubnetRefs() []any {
	return subnetRefs(n.PublicSubnets)
}

func subnetRefs(subnets []Subnet) []any {
	refs := make([]any, len(subnets))
	for i, s := range subnets {
		refs[i] = topology.RefTo(s.ID)
	}
	return refs
}

// IngressSource is a security group allowed to reach the bastion.
type IngressSource struct {
	// Name identifies the source in rule IDs.
	Name string
	// Group is the security group ID, usually a deferred reference.
	Group any
}

// ClusterState describes the declared orchestration cluster.
type ClusterState struct {
	// ID is the logical ID of the cluster resource.
	ID   string
	Name string

	// SecurityGroup is the cluster security group created by the service.
	SecurityGroup topology.Ref

	// OIDCProviderID is the logical ID of the identity provider.
	OIDCProviderID string

	// Issuer is the issuer URL without scheme, as a substitution token.
	Issuer string
}

// OIDCProvider returns a reference to the identity provider ARN.
func (c *ClusterState) OIDCProvider() topology.Ref {
	return topology.RefTo(c.OIDCProviderID)
}

// State holds the shared results of declaration phases.
// It is progressively populated as each phase completes and is read by
// subsequent phases that need earlier results.
type State struct {
	// Network results (populated by the network phase)
	Dev       *Network
	EMR       *Network
	PeeringID string
	BucketID  string

	// Cluster results (populated by the cluster phase)
	Cluster *ClusterState

	// AuthMap accumulates role mappings until the identity phase
	// materializes it.
	AuthMap *k8s.AuthMap

	// AuthConsumers are resources that must not be applied before the
	// identity map exists.
	AuthConsumers []string

	// IngressSources are admitted to the bastion on the debug port.
	IngressSources []IngressSource

	// Capacity results
	CapacityPolicy string

	// EMR results
	VirtualClusterID   string
	ContainersJobRole  string
	ServerlessApp      string
	ServerlessJobRole  string
	ServerlessSecGroup string

	// NamespaceChain lists the namespace, role and binding the virtual
	// cluster depends on, in required apply order.
	NamespaceChain []string

	// Bastion results
	DevboxID string

	// trusts holds the trust document of every declared role by logical ID.
	trusts map[string]*iam.Document
}

// NewState creates an empty state.
func NewState() *State {
	return &State{AuthMap: k8s.NewAuthMap()}
}

// Trust returns the trust document a role was declared with.
func (s *State) Trust(roleID string) (*iam.Document, bool) {
	doc, ok := s.trusts[roleID]
	return doc, ok
}

// Bucket returns a reference to the artifact bucket.
func (s *State) Bucket() topology.Ref {
	return topology.RefTo(s.BucketID)
}

// AddIngressSource records a security group admitted to the bastion.
// Sources with the same name are recorded once.
func (s *State) AddIngressSource(src IngressSource) {
	for _, existing := range s.IngressSources {
		if existing.Name == src.Name {
			return
		}
	}
	s.IngressSources = append(s.IngressSources, src)
}
