package topology

import (
	"encoding/json"
	"fmt"
)

// Kind is the resource type understood by the deploy engine.
type Kind string

// Resource kinds declared by the topology.
const (
	KindVPC                   Kind = "AWS::EC2::VPC"
	KindSubnet                Kind = "AWS::EC2::Subnet"
	KindRouteTable            Kind = "AWS::EC2::RouteTable"
	KindRouteTableAssociation Kind = "AWS::EC2::SubnetRouteTableAssociation"
	KindRoute                 Kind = "AWS::EC2::Route"
	KindInternetGateway       Kind = "AWS::EC2::InternetGateway"
	KindGatewayAttachment     Kind = "AWS::EC2::VPCGatewayAttachment"
	KindEIP                   Kind = "AWS::EC2::EIP"
	KindNatGateway            Kind = "AWS::EC2::NatGateway"
	KindPeeringConnection     Kind = "AWS::EC2::VPCPeeringConnection"
	KindSecurityGroup         Kind = "AWS::EC2::SecurityGroup"
	KindSecurityGroupIngress  Kind = "AWS::EC2::SecurityGroupIngress"
	KindInstance              Kind = "AWS::EC2::Instance"
	KindKeyPair               Kind = "AWS::EC2::KeyPair"

	KindRole            Kind = "AWS::IAM::Role"
	KindPolicy          Kind = "AWS::IAM::Policy"
	KindInstanceProfile Kind = "AWS::IAM::InstanceProfile"
	KindOIDCProvider    Kind = "AWS::IAM::OIDCProvider"

	KindBucket            Kind = "AWS::S3::Bucket"
	KindAutoDeleteObjects Kind = "Custom::S3AutoDeleteObjects"

	KindCluster        Kind = "AWS::EKS::Cluster"
	KindNodegroup      Kind = "AWS::EKS::Nodegroup"
	KindFargateProfile Kind = "AWS::EKS::FargateProfile"

	KindManifest  Kind = "Custom::KubernetesManifest"
	KindPatch     Kind = "Custom::KubernetesPatch"
	KindHelmChart Kind = "Custom::HelmChart"
	KindJSON      Kind = "Custom::AWSCDKCfnJson"

	KindVirtualCluster        Kind = "AWS::EMRContainers::VirtualCluster"
	KindServerlessApplication Kind = "AWS::EMRServerless::Application"
)

// DeletionPolicy controls what the engine does with a resource on teardown.
type DeletionPolicy string

const (
	DeletionPolicyDelete DeletionPolicy = "Delete"
	DeletionPolicyRetain DeletionPolicy = "Retain"
)

// Resource is one declared node of the topology.
type Resource struct {
	ID             string         `json:"-"`
	Kind           Kind           `json:"Type"`
	Properties     map[string]any `json:"Properties,omitempty"`
	DependsOn      []string       `json:"DependsOn,omitempty"`
	DeletionPolicy DeletionPolicy `json:"DeletionPolicy,omitempty"`
	// Component is the part of the topology that declared the resource.
	Component string `json:"-"`
}

// Ref points at another resource, or one of its attributes when Attr is set.
type Ref struct {
	ID   string
	Attr string
}

// RefTo returns a reference to the resource's primary identifier.
func RefTo(id string) Ref {
	return Ref{ID: id}
}

// GetAtt returns a reference to an attribute of the resource.
func GetAtt(id, attr string) Ref {
	return Ref{ID: id, Attr: attr}
}

// Token returns the reference as a ${ID} or ${ID.Attr} substitution token
// for embedding in strings.
func (r Ref) Token() string {
	if r.Attr == "" {
		return fmt.Sprintf("${%s}", r.ID)
	}
	return fmt.Sprintf("${%s.%s}", r.ID, r.Attr)
}

// String implements fmt.Stringer.
func (r Ref) String() string {
	return r.Token()
}

// MarshalJSON renders {"Ref": id} or {"Fn::GetAtt": [id, attr]}.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Attr == "" {
		return json.Marshal(map[string]string{"Ref": r.ID})
	}
	return json.Marshal(map[string][]string{"Fn::GetAtt": {r.ID, r.Attr}})
}

// Sub is a string containing substitution tokens.
type Sub string

// MarshalJSON renders {"Fn::Sub": s}.
func (s Sub) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Fn::Sub": string(s)})
}

// Join concatenates parts with a delimiter at apply time.
type Join struct {
	Delimiter string
	Parts     []any
}

// MarshalJSON renders {"Fn::Join": [delimiter, parts]}.
func (j Join) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{"Fn::Join": {j.Delimiter, j.Parts}})
}

// Output is a named value surfaced after apply, grouped by stack.
type Output struct {
	Stack       string `json:"-"`
	Name        string `json:"-"`
	Description string `json:"Description,omitempty"`
	Value       any    `json:"Value"`
}

// Key returns the stack-qualified output name.
func (o Output) Key() string {
	if o.Stack == "" {
		return o.Name
	}
	return o.Stack + "." + o.Name
}
