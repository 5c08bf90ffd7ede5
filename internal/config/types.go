package config

// Config is the desired state of the remote-debugging topology.
type Config struct {
	// Name prefixes the topology description and resource tags.
	Name string `yaml:"name"`

	// Account is the cloud account the topology is declared for.
	// It scopes role ARNs and the federated subject pattern.
	Account string `yaml:"account" env:"AWS_ACCOUNT_ID"`

	Region    string `yaml:"region" env:"AWS_REGION"`
	Partition string `yaml:"partition,omitempty" env:"AWS_PARTITION"`

	Network    NetworkConfig    `yaml:"network"`
	Storage    StorageConfig    `yaml:"storage"`
	Devbox     DevboxConfig     `yaml:"devbox"`
	Cluster    ClusterConfig    `yaml:"cluster"`
	Capacity   CapacityConfig   `yaml:"capacity"`
	Containers ContainersConfig `yaml:"emr_containers"`
	Serverless ServerlessConfig `yaml:"emr_serverless"`
}

// NetworkConfig holds the two networks joined by the peering connection.
type NetworkConfig struct {
	// Stack is the grouping name used in subnet Name tags ("<stack>/<vpc>/PrivateSubnet1").
	Stack string `yaml:"stack"`

	// Dev hosts the bastion.
	Dev VPCConfig `yaml:"dev"`

	// EMR hosts the cluster and the serverless application.
	EMR VPCConfig `yaml:"emr"`

	// MaxAZs is the number of availability zones each network spans.
	MaxAZs int `yaml:"max_azs"`
}

// VPCConfig describes one network.
type VPCConfig struct {
	Name string `yaml:"name"`
	CIDR string `yaml:"cidr"`
}

// StorageConfig describes the shared artifact bucket and the public dataset
// the job roles may read.
type StorageConfig struct {
	// BucketName pins the artifact bucket name. Empty lets the engine generate one.
	BucketName string `yaml:"bucket_name,omitempty" env:"EMR_ARTIFACT_BUCKET"`

	// PublicDataset is the third-party bucket granted read-only.
	PublicDataset string `yaml:"public_dataset"`
}

// DevboxConfig describes the remote-debugging bastion.
type DevboxConfig struct {
	InstanceType string `yaml:"instance_type"`

	// SSHPublicKey is an optional authorized_keys line installed as the instance key pair.
	SSHPublicKey string `yaml:"ssh_public_key,omitempty"`
}

// ClusterConfig describes the orchestration cluster.
type ClusterConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// DefaultCapacity is the size of the default managed node group.
	// Unset means one node; 0 declares no node group.
	DefaultCapacity     *int   `yaml:"default_capacity"`
	DefaultInstanceType string `yaml:"default_instance_type"`

	// AdminRoleName is an existing role mapped to system:masters.
	// Empty means no admin mapping is declared.
	AdminRoleName string `yaml:"admin_role_name,omitempty" env:"EKS_ADMIN_ROLE_NAME"`

	// Dashboard installs the Kubernetes dashboard chart.
	Dashboard bool `yaml:"dashboard,omitempty"`

	// AirflowNamespace, when set, declares a service account there that may
	// submit job runs to the virtual cluster.
	AirflowNamespace string `yaml:"airflow_namespace,omitempty"`
}

// NodeCount returns the size of the default node group, 0 when unset.
func (c ClusterConfig) NodeCount() int {
	return derefInt(c.DefaultCapacity)
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func intPtr(v int) *int { return &v }

// CapacityConfig describes the autoscaling node-selection policy.
type CapacityConfig struct {
	Policy           CapacityPolicy `yaml:"policy"`
	KarpenterVersion string         `yaml:"karpenter_version"`

	Categories    []string `yaml:"categories,flow"`
	Architectures []string `yaml:"architectures,flow"`

	// MinGeneration is exclusive: generation must be greater than this value.
	MinGeneration int   `yaml:"min_generation"`
	CPUs          []int `yaml:"cpus,flow"`

	// SpotCPULimit caps total CPU provisioned by the spot policy.
	SpotCPULimit int `yaml:"spot_cpu_limit"`
}

// ContainersConfig describes the virtual cluster running jobs on the
// orchestration cluster.
type ContainersConfig struct {
	Namespace          string `yaml:"namespace"`
	VirtualClusterName string `yaml:"virtual_cluster_name"`

	// ServiceAccountPrefix is the prefix of the job service accounts the
	// federated subject pattern admits.
	ServiceAccountPrefix string `yaml:"service_account_prefix"`

	// Audience is the token audience accepted by the additive audience statement.
	Audience string `yaml:"audience"`

	// StrictTrust folds subject and audience conditions into one statement.
	StrictTrust bool `yaml:"strict_trust,omitempty"`
}

// ServerlessConfig describes the serverless batch application.
type ServerlessConfig struct {
	Name               string         `yaml:"name"`
	ReleaseLabel       string         `yaml:"release_label"`
	Type               string         `yaml:"type"`
	Driver             WorkerCapacity `yaml:"driver"`
	Executor           WorkerCapacity `yaml:"executor"`
	IdleTimeoutMinutes int            `yaml:"idle_timeout_minutes"`
}

// WorkerCapacity is a pre-initialized worker pool.
type WorkerCapacity struct {
	// Count of pre-initialized workers. Unset takes the pool default; 0
	// leaves the pool out.
	Count  *int   `yaml:"count"`
	CPU    string `yaml:"cpu"`
	Memory string `yaml:"memory"`
}

// Workers returns the configured worker count, 0 when unset.
func (w WorkerCapacity) Workers() int {
	return derefInt(w.Count)
}

// CapacityPolicy selects which autoscaling policy is declared.
type CapacityPolicy string

const (
	// CapacityPolicyNodePool declares a node class and a node pool with
	// category, architecture, generation and CPU requirements.
	CapacityPolicyNodePool CapacityPolicy = "nodepool"
	// CapacityPolicySpot declares a spot-only provisioner with a CPU ceiling.
	CapacityPolicySpot CapacityPolicy = "spot"
)

// ValidCapacityPolicies returns all valid capacity policies.
func ValidCapacityPolicies() []CapacityPolicy {
	return []CapacityPolicy{CapacityPolicyNodePool, CapacityPolicySpot}
}

// IsValid returns true if the policy is known.
func (p CapacityPolicy) IsValid() bool {
	switch p {
	case CapacityPolicyNodePool, CapacityPolicySpot:
		return true
	default:
		return false
	}
}

// String returns a human-readable description of the policy.
func (p CapacityPolicy) String() string {
	switch p {
	case CapacityPolicyNodePool:
		return "nodepool (on-demand m/c/r, generation-filtered)"
	case CapacityPolicySpot:
		return "spot (spot capacity with CPU ceiling)"
	default:
		return string(p)
	}
}

// PartitionOrDefault returns the configured partition or "aws".
func (c *Config) PartitionOrDefault() string {
	if c.Partition == "" {
		return DefaultPartition
	}
	return c.Partition
}

// HasAdminRole reports whether an admin role mapping should be declared.
func (c *Config) HasAdminRole() bool {
	return c.Cluster.AdminRoleName != ""
}
