package topology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasTokens(t *testing.T) {
	t.Parallel()
	assert.True(t, HasTokens("${Cluster.OpenIdConnectIssuer}:sub"))
	assert.True(t, HasTokens("arn:${Bucket}"))
	assert.False(t, HasTokens("${AWS::Region}"))
	assert.False(t, HasTokens("plain"))
}

func TestJSONValue(t *testing.T) {
	t.Parallel()

	res, err := JSONValue("TrustCondition", map[string]map[string]string{
		"StringLike": {"${Cluster.OpenIdConnectIssuer}:sub": "system:serviceaccount:emr-jobs:*"},
	})
	require.NoError(t, err)
	assert.Equal(t, KindJSON, res.Kind)

	data, err := json.Marshal(res.Properties["Value"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Join":["",[
		"{\"StringLike\":{\"",
		{"Fn::GetAtt":["Cluster","OpenIdConnectIssuer"]},
		":sub\":\"system:serviceaccount:emr-jobs:*\"}}"
	]]}`, string(data))

	tmpl := New("test")
	_, err = tmpl.Add(Resource{ID: "Cluster", Kind: KindCluster})
	require.NoError(t, err)
	_, err = tmpl.Add(res)
	require.NoError(t, err)
	assert.True(t, tmpl.DependsOn("TrustCondition", "Cluster"))
}

func TestJSONValue_PlainRefAndNoTokens(t *testing.T) {
	t.Parallel()

	res, err := JSONValue("A", map[string]string{"${Bucket}": "x"})
	require.NoError(t, err)
	join := res.Properties["Value"].(Join)
	assert.Equal(t, []any{`{"`, RefTo("Bucket"), `":"x"}`}, join.Parts)

	res, err = JSONValue("B", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, []any{`{"k":"v"}`}, res.Properties["Value"].(Join).Parts)
}

func TestRender_SubstitutesTokenStrings(t *testing.T) {
	t.Parallel()
	tmpl := New("test")
	_, err := tmpl.Add(Resource{ID: "Role", Kind: KindRole})
	require.NoError(t, err)
	_, err = tmpl.Add(Resource{ID: "Account", Kind: KindManifest, Properties: map[string]any{
		"Manifest": []any{map[string]any{
			"metadata": map[string]any{
				"annotations": map[string]any{"eks.amazonaws.com/role-arn": GetAtt("Role", "Arn").Token()},
			},
		}},
		"Resource": Sub("${Role.Arn}/*"),
		"Port":     3535,
	}})
	require.NoError(t, err)
	require.NoError(t, tmpl.AddOutput(Output{Name: "RoleArn", Value: "arn is ${Role.Arn}"}))

	data, err := tmpl.Render()
	require.NoError(t, err)

	var doc struct {
		Resources map[string]struct {
			Properties map[string]any
		}
		Outputs map[string]struct{ Value any }
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	props := doc.Resources["Account"].Properties
	manifest := props["Manifest"].([]any)[0].(map[string]any)
	annotations := manifest["metadata"].(map[string]any)["annotations"].(map[string]any)
	assert.Equal(t, map[string]any{"Fn::Sub": "${Role.Arn}"}, annotations["eks.amazonaws.com/role-arn"])
	assert.Equal(t, map[string]any{"Fn::Sub": "${Role.Arn}/*"}, props["Resource"])
	assert.Equal(t, float64(3535), props["Port"])
	assert.Equal(t, map[string]any{"Fn::Sub": "arn is ${Role.Arn}"}, doc.Outputs["RoleArn"].Value)

	// The template itself keeps the plain string.
	res, _ := tmpl.Get("Account")
	assert.IsType(t, "", res.Properties["Manifest"].([]any)[0].(map[string]any)["metadata"].(map[string]any)["annotations"].(map[string]any)["eks.amazonaws.com/role-arn"])
}

func TestRender_RejectsTokenKeys(t *testing.T) {
	t.Parallel()
	tmpl := New("test")
	_, err := tmpl.Add(Resource{ID: "Cluster", Kind: KindCluster})
	require.NoError(t, err)
	_, err = tmpl.Add(Resource{ID: "Role", Kind: KindRole, Properties: map[string]any{
		"Condition": map[string]any{"${Cluster.OpenIdConnectIssuer}:sub": "x"},
	}})
	require.NoError(t, err)

	_, err = tmpl.Render()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInKey)
	assert.Contains(t, err.Error(), "resource Role")
}
