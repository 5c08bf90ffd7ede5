package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ErrUnknownEnumValue is returned when a value falls outside a closed enumeration.
var ErrUnknownEnumValue = errors.New("unknown enumeration value")

var (
	accountRegex  = regexp.MustCompile(`^[0-9]{12}$`)
	dnsLabelRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)
	roleNameRegex = regexp.MustCompile(`^[\w+=,.@-]{1,64}$`)
	versionRegex  = regexp.MustCompile(`^1\.[0-9]{2}$`)
)

// Validate checks the configuration and returns the first problem found.
// ApplyDefaults should be called first.
func (c *Config) Validate() error {
	if !accountRegex.MatchString(c.Account) {
		return fmt.Errorf("account must be a 12-digit account id, got %q", c.Account)
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}

	if err := c.validateNetwork(); err != nil {
		return fmt.Errorf("network validation failed: %w", err)
	}
	if err := c.validateDevbox(); err != nil {
		return fmt.Errorf("devbox validation failed: %w", err)
	}
	if err := c.validateCluster(); err != nil {
		return fmt.Errorf("cluster validation failed: %w", err)
	}
	if err := c.Capacity.Validate(); err != nil {
		return fmt.Errorf("capacity validation failed: %w", err)
	}
	if err := c.validateContainers(); err != nil {
		return fmt.Errorf("emr_containers validation failed: %w", err)
	}
	if err := c.validateServerless(); err != nil {
		return fmt.Errorf("emr_serverless validation failed: %w", err)
	}

	return nil
}

func (c *Config) validateNetwork() error {
	n := c.Network
	if n.MaxAZs < 1 || n.MaxAZs > MaxAZsLimit {
		return fmt.Errorf("max_azs must be between 1 and %d, got %d", MaxAZsLimit, n.MaxAZs)
	}
	if n.Dev.Name == n.EMR.Name {
		return fmt.Errorf("network names must differ, both are %q", n.Dev.Name)
	}
	for _, vpc := range []VPCConfig{n.Dev, n.EMR} {
		network, err := ParseIPv4CIDR(vpc.CIDR)
		if err != nil {
			return fmt.Errorf("%s: %w", vpc.Name, err)
		}
		// Each zone gets one public and one private block of at least /28.
		ones, _ := network.Mask.Size()
		if _, err := SplitCIDR(vpc.CIDR, 2*n.MaxAZs); err != nil || ones > 24 {
			return fmt.Errorf("%s: CIDR %s is too small for %d zones (need /24 or larger)", vpc.Name, vpc.CIDR, n.MaxAZs)
		}
	}
	return CheckNoOverlap(n.Dev.CIDR, n.EMR.CIDR)
}

func (c *Config) validateDevbox() error {
	if c.Devbox.InstanceType == "" {
		return fmt.Errorf("instance_type is required")
	}
	if c.Devbox.SSHPublicKey != "" {
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(c.Devbox.SSHPublicKey)); err != nil {
			return fmt.Errorf("invalid ssh_public_key: %w", err)
		}
	}
	return nil
}

func (c *Config) validateCluster() error {
	cl := c.Cluster
	if !dnsLabelRegex.MatchString(cl.Name) || len(cl.Name) > 100 {
		return fmt.Errorf("invalid cluster name %q", cl.Name)
	}
	if !versionRegex.MatchString(cl.Version) {
		return fmt.Errorf("version must look like 1.28, got %q", cl.Version)
	}
	if cl.NodeCount() < 0 {
		return fmt.Errorf("default_capacity must be non-negative")
	}
	if cl.AdminRoleName != "" && !roleNameRegex.MatchString(cl.AdminRoleName) {
		return fmt.Errorf("invalid admin_role_name %q", cl.AdminRoleName)
	}
	if cl.AirflowNamespace != "" && !dnsLabelRegex.MatchString(cl.AirflowNamespace) {
		return fmt.Errorf("invalid airflow_namespace %q", cl.AirflowNamespace)
	}
	return nil
}

// Validate checks every requirement value against its closed enumeration.
func (cp CapacityConfig) Validate() error {
	if !cp.Policy.IsValid() {
		return fmt.Errorf("%w: policy %q (valid: %v)", ErrUnknownEnumValue, cp.Policy, ValidCapacityPolicies())
	}
	if !strings.HasPrefix(cp.KarpenterVersion, "v") {
		return fmt.Errorf("karpenter_version should start with 'v', got %q", cp.KarpenterVersion)
	}
	if len(cp.Categories) == 0 || len(cp.Architectures) == 0 || len(cp.CPUs) == 0 {
		return fmt.Errorf("categories, architectures and cpus must not be empty")
	}
	for _, cat := range cp.Categories {
		if !ValidCategories[cat] {
			return fmt.Errorf("%w: instance category %q (valid: %v)", ErrUnknownEnumValue, cat, sortedKeys(ValidCategories))
		}
	}
	for _, arch := range cp.Architectures {
		if !ValidArchitectures[arch] {
			return fmt.Errorf("%w: architecture %q (valid: %v)", ErrUnknownEnumValue, arch, sortedKeys(ValidArchitectures))
		}
	}
	for _, cpu := range cp.CPUs {
		if !ValidCPUs[cpu] {
			return fmt.Errorf("%w: cpu count %d", ErrUnknownEnumValue, cpu)
		}
	}
	if cp.MinGeneration < 1 {
		return fmt.Errorf("min_generation must be at least 1, got %d", cp.MinGeneration)
	}
	if cp.SpotCPULimit < 1 {
		return fmt.Errorf("spot_cpu_limit must be positive, got %d", cp.SpotCPULimit)
	}
	return nil
}

func (c *Config) validateContainers() error {
	ct := c.Containers
	if !dnsLabelRegex.MatchString(ct.Namespace) {
		return fmt.Errorf("invalid namespace %q", ct.Namespace)
	}
	if ct.VirtualClusterName == "" {
		return fmt.Errorf("virtual_cluster_name is required")
	}
	if ct.ServiceAccountPrefix == "" || strings.Contains(ct.ServiceAccountPrefix, "*") {
		return fmt.Errorf("service_account_prefix must be non-empty and contain no wildcards")
	}
	if ct.Audience == "" {
		return fmt.Errorf("audience is required")
	}
	return nil
}

func (c *Config) validateServerless() error {
	s := c.Serverless
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.HasPrefix(s.ReleaseLabel, "emr-") {
		return fmt.Errorf("release_label should look like emr-6.15.0, got %q", s.ReleaseLabel)
	}
	if !ValidServerlessTypes[s.Type] {
		return fmt.Errorf("%w: application type %q", ErrUnknownEnumValue, s.Type)
	}
	for name, w := range map[string]WorkerCapacity{"driver": s.Driver, "executor": s.Executor} {
		if w.Workers() < 0 {
			return fmt.Errorf("%s count must be non-negative", name)
		}
	}
	if s.IdleTimeoutMinutes < 1 {
		return fmt.Errorf("idle_timeout_minutes must be positive")
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
