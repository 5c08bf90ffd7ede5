package config

// DebugPort is the TCP port remote debuggers connect back to on the bastion.
const DebugPort = 3535

// Default values reproduce the reference deployment.
const (
	DefaultName      = "emr-remote-debugging"
	DefaultPartition = "aws"
	DefaultRegion    = "us-west-2"

	DefaultNetworkStack = "VPCStack"
	DefaultDevVPCName   = "Dev VPC"
	DefaultDevCIDR      = "10.0.10.0/24"
	DefaultEMRVPCName   = "EMR VPC"
	DefaultEMRCIDR      = "10.0.20.0/24"
	DefaultMaxAZs       = 3
	MaxAZsLimit         = 6

	DefaultPublicDataset = "noaa-gsod-pds"

	DefaultDevboxInstanceType = "c6a.large"

	DefaultClusterName         = "data-team"
	DefaultClusterVersion      = "1.28"
	DefaultClusterCapacity     = 1
	DefaultClusterInstanceType = "m5.large"

	DefaultKarpenterVersion = "v0.32.5"
	DefaultMinGeneration    = 5
	DefaultSpotCPULimit     = 20

	DefaultContainersNamespace  = "emr-jobs"
	DefaultVirtualClusterName   = "EMRCluster"
	DefaultServiceAccountPrefix = "emr-containers-sa"
	DefaultTrustAudience        = "sts.amazon.com"

	DefaultServerlessName     = "remote-debug"
	DefaultReleaseLabel       = "emr-6.15.0"
	DefaultServerlessType     = "SPARK"
	DefaultWorkerCPU          = "4vCPU"
	DefaultWorkerMemory       = "16gb"
	DefaultDriverCount        = 2
	DefaultExecutorCount      = 10
	DefaultIdleTimeoutMinutes = 15
)

// DefaultCategories are the instance categories admitted by the node pool.
func DefaultCategories() []string { return []string{"m", "c", "r"} }

// DefaultArchitectures are the CPU architectures admitted by the node pool.
func DefaultArchitectures() []string { return []string{"amd64"} }

// DefaultCPUs are the vCPU counts admitted by the node pool.
func DefaultCPUs() []int { return []int{4, 8, 16, 32} }

// ValidCategories is the closed set of instance categories.
var ValidCategories = map[string]bool{
	"a": true, "c": true, "d": true, "g": true, "i": true, "m": true,
	"p": true, "r": true, "t": true, "x": true, "z": true,
}

// ValidArchitectures is the closed set of node architectures.
var ValidArchitectures = map[string]bool{
	"amd64": true,
	"arm64": true,
}

// ValidCPUs is the closed set of vCPU counts.
var ValidCPUs = map[int]bool{
	1: true, 2: true, 4: true, 8: true, 16: true, 32: true,
	48: true, 64: true, 96: true, 128: true, 192: true,
}

// ValidServerlessTypes is the closed set of serverless application types.
var ValidServerlessTypes = map[string]bool{
	"SPARK": true,
	"HIVE":  true,
}
