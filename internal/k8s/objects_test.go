package k8s

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestNamespace(t *testing.T) {
	t.Parallel()

	ns, err := Namespace("emr-jobs")
	require.NoError(t, err)
	assert.Equal(t, "v1", ns.GetAPIVersion())
	assert.Equal(t, "Namespace", ns.GetKind())
	assert.Equal(t, "emr-jobs", ns.GetName())

	_, found, _ := unstructured.NestedFieldNoCopy(ns.Object, "metadata", "creationTimestamp")
	assert.False(t, found, "creationTimestamp should be stripped")
	_, found, _ = unstructured.NestedFieldNoCopy(ns.Object, "status")
	assert.False(t, found, "status should be stripped")
}

func TestEMRContainersRules(t *testing.T) {
	t.Parallel()

	rules := EMRContainersRules()
	require.Len(t, rules, 8)

	assert.Equal(t, []string{"namespaces"}, rules[0].Resources)
	assert.Equal(t, []string{"get"}, rules[0].Verbs)
	assert.Equal(t, []string{"create", "patch", "delete", "watch"}, rules[2].Verbs)
	assert.Equal(t, []string{"apps"}, rules[3].APIGroups)
	assert.Equal(t, []string{"extensions", "networking.k8s.io"}, rules[5].APIGroups)
	assert.Contains(t, rules[6].Verbs, "deletecollection")
	assert.NotContains(t, rules[4].Verbs, "deletecollection")

	// Callers may mutate the returned rules without affecting later calls.
	rules[3].Verbs[0] = "mutated"
	assert.Equal(t, "get", EMRContainersRules()[3].Verbs[0])
}

func TestRoleAndBinding(t *testing.T) {
	t.Parallel()

	role, err := Role("emr-jobs", "emr-containers", EMRContainersRules())
	require.NoError(t, err)
	assert.Equal(t, "rbac.authorization.k8s.io/v1", role.GetAPIVersion())
	assert.Equal(t, "emr-jobs", role.GetNamespace())
	rules, found, err := unstructured.NestedSlice(role.Object, "rules")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, rules, 8)

	binding, err := RoleBinding("emr-jobs", "emr-containers", "emr-containers", UserSubject("emr-containers"))
	require.NoError(t, err)
	kind, _, _ := unstructured.NestedString(binding.Object, "roleRef", "kind")
	assert.Equal(t, "Role", kind)
	subjects, _, _ := unstructured.NestedSlice(binding.Object, "subjects")
	require.Len(t, subjects, 1)
	subject := subjects[0].(map[string]interface{})
	assert.Equal(t, rbacv1.UserKind, subject["kind"])
	assert.Equal(t, "emr-containers", subject["name"])
}

func TestClusterRoleBinding(t *testing.T) {
	t.Parallel()

	crb, err := ClusterRoleBinding("eks-admin", ClusterAdminRole, ServiceAccountSubject(KubeSystemNamespace, "eks-admin"))
	require.NoError(t, err)
	name, _, _ := unstructured.NestedString(crb.Object, "roleRef", "name")
	assert.Equal(t, "cluster-admin", name)
	assert.Empty(t, crb.GetNamespace())

	subjects, _, _ := unstructured.NestedSlice(crb.Object, "subjects")
	require.Len(t, subjects, 1)
	assert.Equal(t, "kube-system", subjects[0].(map[string]interface{})["namespace"])
}

func TestServiceAccountAnnotations(t *testing.T) {
	t.Parallel()

	sa, err := ServiceAccount("airflow", "airflow-emr", map[string]string{
		"eks.amazonaws.com/role-arn": "${AirflowRole.Arn}",
	})
	require.NoError(t, err)
	assert.Equal(t, "${AirflowRole.Arn}", sa.GetAnnotations()["eks.amazonaws.com/role-arn"])

	plain, err := ServiceAccount(KubeSystemNamespace, "eks-admin", nil)
	require.NoError(t, err)
	assert.Empty(t, plain.GetAnnotations())
}
