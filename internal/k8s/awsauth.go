package k8s

import (
	"errors"
	"fmt"
	"slices"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// AWSAuthConfigMap is the name of the IAM-to-cluster identity map.
const AWSAuthConfigMap = "aws-auth"

// Well-known groups.
const (
	GroupMasters       = "system:masters"
	GroupBootstrappers = "system:bootstrappers"
	GroupNodes         = "system:nodes"
)

// ErrConflictingMapping is returned when a role is mapped twice with
// different identities.
var ErrConflictingMapping = errors.New("conflicting role mapping")

// RoleMapping maps an IAM role to a cluster identity.
type RoleMapping struct {
	RoleARN  string   `json:"rolearn"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

func (m RoleMapping) equal(o RoleMapping) bool {
	return m.RoleARN == o.RoleARN && m.Username == o.Username && slices.Equal(m.Groups, o.Groups)
}

// AuthMap accumulates role mappings. It is append-only.
type AuthMap struct {
	roles []RoleMapping
}

// NewAuthMap returns an empty map.
func NewAuthMap() *AuthMap {
	return &AuthMap{}
}

// Add appends a mapping. Re-adding an identical mapping is a no-op; mapping
// the same role to a different identity fails.
func (a *AuthMap) Add(m RoleMapping) error {
	if m.RoleARN == "" {
		return fmt.Errorf("role mapping requires a role ARN")
	}
	if m.Username == "" {
		return fmt.Errorf("role mapping for %s requires a username", m.RoleARN)
	}
	if m.Groups == nil {
		m.Groups = []string{}
	} else {
		m.Groups = copyOf(m.Groups)
	}
	for _, existing := range a.roles {
		if existing.RoleARN != m.RoleARN {
			continue
		}
		if existing.equal(m) {
			return nil
		}
		return fmt.Errorf("%w: %s already mapped to %q", ErrConflictingMapping, m.RoleARN, existing.Username)
	}
	a.roles = append(a.roles, m)
	return nil
}

// AddMastersRole maps a role with cluster-admin rights.
func (a *AuthMap) AddMastersRole(roleARN string) error {
	return a.Add(RoleMapping{RoleARN: roleARN, Username: roleARN, Groups: []string{GroupMasters}})
}

// AddNodeRole maps a worker node role.
func (a *AuthMap) AddNodeRole(roleARN string) error {
	return a.Add(RoleMapping{
		RoleARN:  roleARN,
		Username: "system:node:{{EC2PrivateDNSName}}",
		Groups:   []string{GroupBootstrappers, GroupNodes},
	})
}

// Roles returns a copy of the mappings in insertion order.
func (a *AuthMap) Roles() []RoleMapping {
	out := make([]RoleMapping, len(a.roles))
	for i, m := range a.roles {
		m.Groups = copyOf(m.Groups)
		out[i] = m
	}
	return out
}

// Lookup returns the mapping for a role ARN.
func (a *AuthMap) Lookup(roleARN string) (RoleMapping, bool) {
	for _, m := range a.roles {
		if m.RoleARN == roleARN {
			return m, true
		}
	}
	return RoleMapping{}, false
}

// Len returns the number of mappings.
func (a *AuthMap) Len() int {
	return len(a.roles)
}

// ConfigMap materializes the kube-system/aws-auth ConfigMap.
func (a *AuthMap) ConfigMap() (*unstructured.Unstructured, error) {
	roles := a.roles
	if roles == nil {
		roles = []RoleMapping{}
	}
	data, err := yaml.Marshal(roles)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mapRoles: %w", err)
	}
	return ConfigMap(KubeSystemNamespace, AWSAuthConfigMap, map[string]string{
		"mapRoles": string(data),
	})
}

// ParseMapRoles decodes a mapRoles document.
func ParseMapRoles(data string) ([]RoleMapping, error) {
	var roles []RoleMapping
	if err := yaml.Unmarshal([]byte(data), &roles); err != nil {
		return nil, fmt.Errorf("failed to parse mapRoles: %w", err)
	}
	return roles, nil
}
