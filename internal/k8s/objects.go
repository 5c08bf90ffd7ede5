package k8s

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// Well-known names.
const (
	KubeSystemNamespace = "kube-system"
	ClusterAdminRole    = "cluster-admin"
)

// ToUnstructured converts a typed object into unstructured form, dropping
// the empty creationTimestamp and status the converter emits.
func ToUnstructured(obj runtime.Object) (*unstructured.Unstructured, error) {
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %T: %w", obj, err)
	}
	u := &unstructured.Unstructured{Object: content}
	unstructured.RemoveNestedField(u.Object, "metadata", "creationTimestamp")
	unstructured.RemoveNestedField(u.Object, "status")
	if u.GetKind() == "" {
		return nil, fmt.Errorf("%T has no kind set", obj)
	}
	return u, nil
}

// Namespace returns a Namespace object.
func Namespace(name string) (*unstructured.Unstructured, error) {
	return ToUnstructured(&corev1.Namespace{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: metav1.ObjectMeta{Name: name},
	})
}

// ServiceAccount returns a ServiceAccount, optionally annotated.
func ServiceAccount(namespace, name string, annotations map[string]string) (*unstructured.Unstructured, error) {
	return ToUnstructured(&corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   namespace,
			Annotations: annotations,
		},
	})
}

// ConfigMap returns a ConfigMap.
func ConfigMap(namespace, name string, data map[string]string) (*unstructured.Unstructured, error) {
	return ToUnstructured(&corev1.ConfigMap{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Data:       data,
	})
}

// Role returns a namespaced Role.
func Role(namespace, name string, rules []rbacv1.PolicyRule) (*unstructured.Unstructured, error) {
	return ToUnstructured(&rbacv1.Role{
		TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "Role"},
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Rules:      rules,
	})
}

// RoleBinding binds a Role in namespace to subjects.
func RoleBinding(namespace, name, roleName string, subjects ...rbacv1.Subject) (*unstructured.Unstructured, error) {
	return ToUnstructured(&rbacv1.RoleBinding{
		TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "RoleBinding"},
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Subjects:   subjects,
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "Role",
			Name:     roleName,
		},
	})
}

// ClusterRoleBinding binds a ClusterRole to subjects.
func ClusterRoleBinding(name, clusterRole string, subjects ...rbacv1.Subject) (*unstructured.Unstructured, error) {
	return ToUnstructured(&rbacv1.ClusterRoleBinding{
		TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "ClusterRoleBinding"},
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Subjects:   subjects,
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "ClusterRole",
			Name:     clusterRole,
		},
	})
}

// UserSubject returns an RBAC subject for a user name.
func UserSubject(name string) rbacv1.Subject {
	return rbacv1.Subject{Kind: rbacv1.UserKind, Name: name, APIGroup: rbacv1.GroupName}
}

// ServiceAccountSubject returns an RBAC subject for a service account.
func ServiceAccountSubject(namespace, name string) rbacv1.Subject {
	return rbacv1.Subject{Kind: rbacv1.ServiceAccountKind, Name: name, Namespace: namespace}
}

var (
	fullVerbs = []string{
		"get", "list", "watch", "describe", "create", "edit", "delete",
		"annotate", "patch", "label",
	}
	fullVerbsWithCollection = []string{
		"get", "list", "watch", "describe", "create", "edit", "delete",
		"deletecollection", "annotate", "patch", "label",
	}
)

// EMRContainersRules is the permission set the virtual cluster service
// needs inside its namespace.
func EMRContainersRules() []rbacv1.PolicyRule {
	return []rbacv1.PolicyRule{
		{APIGroups: []string{""}, Resources: []string{"namespaces"}, Verbs: []string{"get"}},
		{
			APIGroups: []string{""},
			Resources: []string{"serviceaccounts", "services", "configmaps", "events", "pods", "pods/log"},
			Verbs:     copyOf(fullVerbsWithCollection),
		},
		{APIGroups: []string{""}, Resources: []string{"secrets"}, Verbs: []string{"create", "patch", "delete", "watch"}},
		{APIGroups: []string{"apps"}, Resources: []string{"statefulsets", "deployments"}, Verbs: copyOf(fullVerbs)},
		{APIGroups: []string{"batch"}, Resources: []string{"jobs"}, Verbs: copyOf(fullVerbs)},
		{APIGroups: []string{"extensions", "networking.k8s.io"}, Resources: []string{"ingresses"}, Verbs: copyOf(fullVerbs)},
		{APIGroups: []string{rbacv1.GroupName}, Resources: []string{"roles", "rolebindings"}, Verbs: copyOf(fullVerbsWithCollection)},
		{APIGroups: []string{""}, Resources: []string{"persistentvolumeclaims"}, Verbs: copyOf(fullVerbsWithCollection)},
	}
}

func copyOf(s []string) []string {
	return append([]string(nil), s...)
}
