package provisioning

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// ErrClusterNotDeclared is returned when an orchestration object is declared
// before the cluster it lives on.
var ErrClusterNotDeclared = errors.New("orchestration cluster not declared")

// Declare adds r to the template on behalf of component and logs the result.
func Declare(ctx *Context, component string, r topology.Resource) (topology.Ref, error) {
	r.Component = component
	existed := ctx.Template.Has(r.ID)

	ref, err := ctx.Template.Add(r)
	if err != nil {
		LogResourceFailed(ctx.Observer, component, string(r.Kind), r.ID, err)
		return topology.Ref{}, err
	}
	if existed {
		ctx.Observer.Event(Event{
			Type:     EventResourceExists,
			Phase:    component,
			Resource: r.ID,
			Message:  "already declared",
		})
		return ref, nil
	}
	LogResourceDeclared(ctx.Observer, component, string(r.Kind), r.ID)
	return ref, nil
}

// DeclareOutput surfaces value under stack.name.
func DeclareOutput(ctx *Context, stack, name, description string, value any) error {
	return ctx.Template.AddOutput(topology.Output{
		Stack:       stack,
		Name:        name,
		Description: description,
		Value:       value,
	})
}

// ManifestOptions tunes how an orchestration object is applied.
type ManifestOptions struct {
	// Overwrite replaces an object the cluster created on its own.
	Overwrite bool
	DependsOn []string
}

// DeclareManifest declares obj on the orchestration cluster.
func DeclareManifest(ctx *Context, component, id string, obj *unstructured.Unstructured, opts ManifestOptions) (topology.Ref, error) {
	if ctx.State.Cluster == nil {
		return topology.Ref{}, fmt.Errorf("%w: cannot declare %s %s", ErrClusterNotDeclared, obj.GetKind(), obj.GetName())
	}
	props := map[string]any{
		"ClusterName": topology.RefTo(ctx.State.Cluster.ID),
		"Manifest":    []any{obj.Object},
	}
	if opts.Overwrite {
		props["Overwrite"] = true
	}
	return Declare(ctx, component, topology.Resource{
		ID:         id,
		Kind:       topology.KindManifest,
		Properties: props,
		DependsOn:  opts.DependsOn,
	})
}

// HelmChart describes a chart release on the orchestration cluster.
type HelmChart struct {
	ID              string
	Chart           string
	Repository      string
	Version         string
	Release         string
	Namespace       string
	CreateNamespace bool
	Values          map[string]any
	DependsOn       []string
}

// DeclareHelmChart declares a chart release on the orchestration cluster.
func DeclareHelmChart(ctx *Context, component string, chart HelmChart) (topology.Ref, error) {
	if ctx.State.Cluster == nil {
		return topology.Ref{}, fmt.Errorf("%w: cannot declare chart %s", ErrClusterNotDeclared, chart.Chart)
	}
	props := map[string]any{
		"ClusterName":     topology.RefTo(ctx.State.Cluster.ID),
		"Chart":           chart.Chart,
		"Repository":      chart.Repository,
		"Namespace":       chart.Namespace,
		"CreateNamespace": chart.CreateNamespace,
	}
	if chart.Version != "" {
		props["Version"] = chart.Version
	}
	if chart.Release != "" {
		props["Release"] = chart.Release
	}
	if len(chart.Values) > 0 {
		props["Values"] = chart.Values
	}
	return Declare(ctx, component, topology.Resource{
		ID:         chart.ID,
		Kind:       topology.KindHelmChart,
		Properties: props,
		DependsOn:  chart.DependsOn,
	})
}

// RoleSpec describes an IAM role and its default policy.
type RoleSpec struct {
	ID              string
	Trust           *iam.Document
	ManagedPolicies []string
	Statements      []iam.Statement
	Tags            any
}

// DeclareRole declares a role and, when it has statements, a policy named
// <ID>DefaultPolicy attached to it.
func DeclareRole(ctx *Context, component string, spec RoleSpec) (topology.Ref, error) {
	if spec.Trust == nil || len(spec.Trust.Statement) == 0 {
		return topology.Ref{}, fmt.Errorf("role %s has no trust statements", spec.ID)
	}
	trust, err := declareTrust(ctx, component, spec)
	if err != nil {
		return topology.Ref{}, err
	}
	props := map[string]any{
		"AssumeRolePolicyDocument": trust,
	}
	if len(spec.ManagedPolicies) > 0 {
		arns := make([]string, len(spec.ManagedPolicies))
		for i, name := range spec.ManagedPolicies {
			arns[i] = iam.ManagedPolicyARN(ctx.Partition(), name)
		}
		props["ManagedPolicyArns"] = arns
	}
	if spec.Tags != nil {
		props["Tags"] = spec.Tags
	}
	role, err := Declare(ctx, component, topology.Resource{
		ID:         spec.ID,
		Kind:       topology.KindRole,
		Properties: props,
	})
	if err != nil {
		return topology.Ref{}, err
	}
	if ctx.State.trusts == nil {
		ctx.State.trusts = make(map[string]*iam.Document)
	}
	ctx.State.trusts[spec.ID] = spec.Trust

	if len(spec.Statements) > 0 {
		policyID := spec.ID + "DefaultPolicy"
		doc := iam.NewDocument()
		doc.AddStatements(spec.Statements...)
		if _, err := Declare(ctx, component, topology.Resource{
			ID:   policyID,
			Kind: topology.KindPolicy,
			Properties: map[string]any{
				"PolicyName":     policyID,
				"PolicyDocument": doc,
				"Roles":          []any{role},
			},
		}); err != nil {
			return topology.Ref{}, err
		}
	}
	return role, nil
}

// declareTrust returns the trust document as it is declared on the role.
// Conditions keyed by substitution tokens, such as the issuer-prefixed claim
// keys of federated statements, are moved into a resolved JSON value
// <ID>Condition<n> that the statement references.
func declareTrust(ctx *Context, component string, spec RoleSpec) (any, error) {
	deferred := false
	statements := make([]any, len(spec.Trust.Statement))
	for i, s := range spec.Trust.Statement {
		if !hasTokenKey(s.Condition) {
			statements[i] = s
			continue
		}
		value, err := topology.JSONValue(fmt.Sprintf("%sCondition%d", spec.ID, i), s.Condition)
		if err != nil {
			return nil, err
		}
		ref, err := Declare(ctx, component, value)
		if err != nil {
			return nil, err
		}
		statements[i] = s.Defer(topology.GetAtt(ref.ID, "Value"))
		deferred = true
	}
	if !deferred {
		return spec.Trust, nil
	}
	return map[string]any{
		"Version":   spec.Trust.Version,
		"Statement": statements,
	}, nil
}

func hasTokenKey(c iam.Condition) bool {
	for _, key := range c.Keys() {
		if topology.HasTokens(key) {
			return true
		}
	}
	return false
}
