package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

func TestResult_Manifests(t *testing.T) {
	result := assemble(t)

	objs, err := result.Manifests()
	require.NoError(t, err)
	require.NotEmpty(t, objs)

	position := make(map[string]int, len(objs))
	for i, obj := range objs {
		assert.NotEmpty(t, obj.GetKind())
		position[obj.GetKind()+"/"+obj.GetName()] = i
	}

	ns, ok := position["Namespace/emr-jobs"]
	require.True(t, ok)
	role, ok := position["Role/emr-containers"]
	require.True(t, ok)
	binding, ok := position["RoleBinding/emr-containers"]
	require.True(t, ok)
	_, ok = position["ConfigMap/aws-auth"]
	assert.True(t, ok)

	assert.Less(t, ns, role)
	assert.Less(t, role, binding)
}

func TestResult_Manifests_Malformed(t *testing.T) {
	tmpl := topology.New("broken")
	_, err := tmpl.Add(topology.Resource{
		ID:         "Broken",
		Kind:       topology.KindManifest,
		Properties: map[string]any{"Manifest": "not-a-list"},
	})
	require.NoError(t, err)

	result := &Result{Template: tmpl, ApplyOrder: []string{"Broken"}}
	_, err = result.Manifests()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}
