package cluster

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/k8s"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/naming"
)

// AirflowJobActions are the job-run actions granted to the scheduler's
// service account.
var AirflowJobActions = []string{
	"emr-containers:StartJobRun",
	"emr-containers:ListJobRuns",
	"emr-containers:DescribeJobRun",
	"emr-containers:CancelJobRun",
}

// DeclareAccess declares who may administer the cluster, plus the optional
// dashboard and scheduler service account.
func DeclareAccess(ctx *provisioning.Context) error {
	cfg := ctx.Config

	if cfg.HasAdminRole() {
		admin := iam.RoleARN(ctx.Partition(), cfg.Account, cfg.Cluster.AdminRoleName)
		if err := ctx.State.AuthMap.AddMastersRole(admin); err != nil {
			return err
		}
		ctx.Observer.Printf("[%s] Mapped %s to %s", phaseCluster, admin, k8s.GroupMasters)
	}

	if err := declareClusterAdmin(ctx); err != nil {
		return err
	}

	if cfg.Cluster.Dashboard {
		if err := declareDashboard(ctx); err != nil {
			return err
		}
	}

	if cfg.Cluster.AirflowNamespace != "" {
		if err := declareAirflowAccess(ctx, cfg.Cluster.AirflowNamespace); err != nil {
			return err
		}
	}
	return nil
}

// declareClusterAdmin declares the eks-admin service account bound to
// cluster-admin, used to sign in to the dashboard.
func declareClusterAdmin(ctx *provisioning.Context) error {
	sa, err := k8s.ServiceAccount(k8s.KubeSystemNamespace, AdminServiceAccount, nil)
	if err != nil {
		return err
	}
	if _, err := DeclareObject(ctx, phaseCluster, sa); err != nil {
		return err
	}

	crb, err := k8s.ClusterRoleBinding(AdminServiceAccount, k8s.ClusterAdminRole,
		k8s.ServiceAccountSubject(k8s.KubeSystemNamespace, AdminServiceAccount))
	if err != nil {
		return err
	}
	_, err = DeclareObject(ctx, phaseCluster, crb)
	return err
}

func declareDashboard(ctx *provisioning.Context) error {
	_, err := provisioning.DeclareHelmChart(ctx, phaseCluster, provisioning.HelmChart{
		ID:              DashboardChartID,
		Chart:           "kubernetes-dashboard",
		Repository:      DashboardRepo,
		Release:         "k8d",
		Namespace:       DashboardNamespace,
		CreateNamespace: true,
		Values: map[string]any{
			"fullnameOverride": "kubernetes-dashboard",
			"extraArgs":        []string{"--token-ttl=0"},
		},
	})
	return err
}

// declareAirflowAccess declares a namespace and a federated service account
// whose role may submit and manage job runs.
func declareAirflowAccess(ctx *provisioning.Context, namespace string) error {
	c := ctx.State.Cluster

	trust := iam.NewDocument()
	if err := iam.AddServiceAccountTrust(trust, c.OIDCProvider(), c.Issuer, namespace, AirflowServiceAcct, ServiceAccountAudience); err != nil {
		return err
	}
	role, err := provisioning.DeclareRole(ctx, phaseCluster, provisioning.RoleSpec{
		ID:         AirflowRoleID,
		Trust:      trust,
		Statements: []iam.Statement{iam.Allow(AirflowJobActions)},
	})
	if err != nil {
		return err
	}

	ns, err := k8s.Namespace(namespace)
	if err != nil {
		return err
	}
	nsRef, err := DeclareObject(ctx, phaseCluster, ns)
	if err != nil {
		return err
	}

	sa, err := k8s.ServiceAccount(namespace, AirflowServiceAcct, map[string]string{
		"eks.amazonaws.com/role-arn": topology.GetAtt(role.ID, "Arn").Token(),
	})
	if err != nil {
		return err
	}
	_, err = DeclareObject(ctx, phaseCluster, sa, nsRef.ID)
	return err
}

// ManifestID names an object on the cluster by kind, namespace and name.
func ManifestID(obj *unstructured.Unstructured) string {
	return manifestIDFor(obj.GetKind(), obj.GetNamespace(), obj.GetName())
}

func manifestIDFor(kind, namespace, name string) string {
	if namespace != "" {
		name = namespace + "-" + name
	}
	return naming.Manifest(ClusterID, kind, name)
}

// DeclareObject declares obj under its ManifestID.
func DeclareObject(ctx *provisioning.Context, component string, obj *unstructured.Unstructured, deps ...string) (topology.Ref, error) {
	return provisioning.DeclareManifest(ctx, component, ManifestID(obj), obj, provisioning.ManifestOptions{DependsOn: deps})
}
