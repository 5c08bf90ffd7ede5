package emr

// Logical IDs and names of the job runtimes.
const (
	ContainersStack = "EMRContainers"
	ServerlessStack = "EMRServerless"

	VirtualClusterID     = "EMRCluster"
	ContainersJobRoleID  = "ContainersJobRole"
	ServerlessAppID      = "SparkApp"
	ServerlessJobRoleID  = "ServerlessJobRole"
	ServerlessSGID       = "EMRServerlessSG"
	ServerlessSourceName = "EMRServerlessSG"

	// ContainersRoleName names both the namespace Role and its binding.
	ContainersRoleName = "emr-containers"

	// ContainersUser is the cluster username the service-linked role maps to.
	ContainersUser = "emr-containers"

	containersProvider = "EKS"
)

// Managed policies attached to the containers job role.
var containersManagedPolicies = []string{
	"AWSGlueConsoleFullAccess",
	"CloudWatchFullAccess",
}

const (
	phaseContainers = "emr-containers"
	phaseServerless = "emr-serverless"
)
