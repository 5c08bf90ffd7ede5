package cluster

// Logical IDs and names on the orchestration cluster.
const (
	// Stack groups the cluster outputs.
	Stack = "EKSStack"

	ClusterID        = "EksForSpark"
	ClusterRoleID    = ClusterID + "Role"
	ControlPlaneSGID = ClusterID + "ControlPlaneSecurityGroup"
	OIDCProviderID   = ClusterID + "OpenIdConnectProvider"
	NodegroupID      = ClusterID + "NodegroupDefaultCapacity"
	NodegroupRoleID  = NodegroupID + "NodeGroupRole"

	FargateProfileID     = ClusterID + "FargateProfileKarpenter"
	FargateRoleID        = FargateProfileID + "PodExecutionRole"
	CoreDNSPatchID       = ClusterID + "CoreDnsComputeTypePatch"
	KarpenterChartID     = "KarpenterChart"
	KarpenterControlRole = "KarpenterControllerRole"
	KarpenterNodeRole    = "KarpenterNodeRole"
	KarpenterProfileID   = "KarpenterInstanceProfile"
	DashboardChartID     = ClusterID + "ChartK8d"
	AirflowRoleID        = "AirflowServiceAccountRole"

	FargateProfileName = "karpenter"
	KarpenterNamespace = "karpenter"
	KarpenterRelease   = "karpenter"
	KarpenterChartRepo = "oci://public.ecr.aws/karpenter"

	NodeClassName       = "nodeclass"
	NodePoolName        = "nodepool"
	SpotProvisionerName = "spot-provisioner"

	AdminServiceAccount = "eks-admin"
	AirflowServiceAcct  = "airflow-emr-containers"

	DashboardNamespace = "kubernetes-dashboard"
	DashboardRepo      = "https://kubernetes.github.io/dashboard/"

	// ServiceAccountAudience is the audience of projected service-account
	// tokens exchanged for role credentials.
	ServiceAccountAudience = "sts.amazonaws.com"
)

// Component names used in logs and resource metadata.
const (
	phaseCluster  = "cluster"
	phaseCapacity = "capacity"
	phaseIdentity = "identity"
)
