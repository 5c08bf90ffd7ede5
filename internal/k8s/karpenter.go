package k8s

import (
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// Karpenter API versions.
const (
	NodeClassAPIVersion   = "karpenter.k8s.aws/v1beta1"
	NodePoolAPIVersion    = "karpenter.sh/v1beta1"
	ProvisionerAPIVersion = "karpenter.sh/v1alpha5"
)

// Well-known requirement keys.
const (
	LabelInstanceCategory   = "karpenter.k8s.aws/instance-category"
	LabelInstanceGeneration = "karpenter.k8s.aws/instance-generation"
	LabelInstanceCPU        = "karpenter.k8s.aws/instance-cpu"
	LabelCapacityType       = "karpenter.sh/capacity-type"
	LabelArch               = corev1.LabelArchStable
)

// NodeClass describes an EC2NodeClass.
type NodeClass struct {
	Name string
	// AMIFamily defaults to AL2.
	AMIFamily string
	// SubnetTag is matched against the subnet Name tag; wildcards allowed.
	SubnetTag string
	// ClusterName selects security groups by aws:eks:cluster-name.
	ClusterName string
	// Role is the node IAM role name.
	Role string
}

// EC2NodeClass builds the node class object.
func EC2NodeClass(nc NodeClass) (*unstructured.Unstructured, error) {
	if nc.Name == "" || nc.Role == "" {
		return nil, fmt.Errorf("node class requires a name and a role")
	}
	ami := nc.AMIFamily
	if ami == "" {
		ami = "AL2"
	}
	u := newCustomObject(NodeClassAPIVersion, "EC2NodeClass", nc.Name)
	u.Object["spec"] = map[string]interface{}{
		"amiFamily": ami,
		"subnetSelectorTerms": []interface{}{
			map[string]interface{}{"tags": map[string]interface{}{"Name": nc.SubnetTag}},
		},
		"securityGroupSelectorTerms": []interface{}{
			map[string]interface{}{"tags": map[string]interface{}{"aws:eks:cluster-name": nc.ClusterName}},
		},
		"role": nc.Role,
	}
	return u, nil
}

// InstanceRequirements holds the instance shape predicates of a node pool.
type InstanceRequirements struct {
	Categories    []string
	Architectures []string
	MinGeneration int
	CPUs          []int
}

// Requirements renders the predicates in a fixed order: category, arch,
// generation, cpu. Empty predicates are omitted.
func (r InstanceRequirements) Requirements() []corev1.NodeSelectorRequirement {
	var out []corev1.NodeSelectorRequirement
	if len(r.Categories) > 0 {
		out = append(out, corev1.NodeSelectorRequirement{
			Key:      LabelInstanceCategory,
			Operator: corev1.NodeSelectorOpIn,
			Values:   copyOf(r.Categories),
		})
	}
	if len(r.Architectures) > 0 {
		out = append(out, corev1.NodeSelectorRequirement{
			Key:      LabelArch,
			Operator: corev1.NodeSelectorOpIn,
			Values:   copyOf(r.Architectures),
		})
	}
	if r.MinGeneration > 0 {
		out = append(out, corev1.NodeSelectorRequirement{
			Key:      LabelInstanceGeneration,
			Operator: corev1.NodeSelectorOpGt,
			Values:   []string{strconv.Itoa(r.MinGeneration)},
		})
	}
	if len(r.CPUs) > 0 {
		values := make([]string, len(r.CPUs))
		for i, c := range r.CPUs {
			values[i] = strconv.Itoa(c)
		}
		out = append(out, corev1.NodeSelectorRequirement{
			Key:      LabelInstanceCPU,
			Operator: corev1.NodeSelectorOpIn,
			Values:   values,
		})
	}
	return out
}

// NodePool builds a node pool bound to the named EC2NodeClass.
func NodePool(name, nodeClass string, req InstanceRequirements) (*unstructured.Unstructured, error) {
	if name == "" || nodeClass == "" {
		return nil, fmt.Errorf("node pool requires a name and a node class")
	}
	reqs, err := requirementsToUnstructured(req.Requirements())
	if err != nil {
		return nil, err
	}
	u := newCustomObject(NodePoolAPIVersion, "NodePool", name)
	u.Object["spec"] = map[string]interface{}{
		"template": map[string]interface{}{
			"spec": map[string]interface{}{
				"nodeClassRef": map[string]interface{}{
					"apiVersion": NodeClassAPIVersion,
					"kind":       "EC2NodeClass",
					"name":       nodeClass,
				},
				"requirements": reqs,
			},
		},
	}
	return u, nil
}

// SpotProvisioner describes the legacy spot-only provisioner.
type SpotProvisioner struct {
	Name        string
	CPULimit    int
	SubnetTag   string
	ClusterName string
}

// Provisioner builds a provisioner limited to spot capacity.
func Provisioner(p SpotProvisioner) (*unstructured.Unstructured, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("provisioner requires a name")
	}
	if p.CPULimit <= 0 {
		return nil, fmt.Errorf("provisioner %s: cpu limit must be positive, got %d", p.Name, p.CPULimit)
	}
	reqs, err := requirementsToUnstructured([]corev1.NodeSelectorRequirement{{
		Key:      LabelCapacityType,
		Operator: corev1.NodeSelectorOpIn,
		Values:   []string{"spot"},
	}})
	if err != nil {
		return nil, err
	}
	u := newCustomObject(ProvisionerAPIVersion, "Provisioner", p.Name)
	u.Object["spec"] = map[string]interface{}{
		"requirements": reqs,
		"limits": map[string]interface{}{
			"resources": map[string]interface{}{"cpu": int64(p.CPULimit)},
		},
		"provider": map[string]interface{}{
			"subnetSelector":        map[string]interface{}{"Name": p.SubnetTag},
			"securityGroupSelector": map[string]interface{}{"aws:eks:cluster-name": p.ClusterName},
		},
	}
	return u, nil
}

func newCustomObject(apiVersion, kind, name string) *unstructured.Unstructured {
	u := &unstructured.Unstructured{Object: map[string]interface{}{}}
	u.SetAPIVersion(apiVersion)
	u.SetKind(kind)
	u.SetName(name)
	return u
}

func requirementsToUnstructured(reqs []corev1.NodeSelectorRequirement) ([]interface{}, error) {
	out := make([]interface{}, 0, len(reqs))
	for i := range reqs {
		m, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&reqs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert requirement %s: %w", reqs[i].Key, err)
		}
		out = append(out, m)
	}
	return out, nil
}
