package topology

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aws-samples/remote-debugging-with-emr/internal/graph"
)

var (
	// ErrMissingDependency is returned when a resource or output refers to
	// something that has not been declared yet.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrConflictingResource is returned when an ID is re-declared with
	// different content.
	ErrConflictingResource = errors.New("conflicting resource declaration")

	// ErrDuplicateOutput is returned when an output key is declared twice.
	ErrDuplicateOutput = errors.New("duplicate output")

	// ErrInvalidID is returned for logical IDs that cannot be used in tokens.
	ErrInvalidID = errors.New("invalid logical id")
)

var (
	idRegex    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,254}$`)
	tokenRegex = regexp.MustCompile(`\$\{([A-Za-z][A-Za-z0-9_]*)(?:\.([A-Za-z0-9_.]+))?\}`)
)

// Template is the declared resource graph.
type Template struct {
	Description string

	resources map[string]*Resource
	canonical map[string]string
	order     []string
	graph     *graph.Graph

	outputs    []Output
	outputKeys map[string]bool
}

// New creates an empty template.
func New(description string) *Template {
	return &Template{
		Description: description,
		resources:   make(map[string]*Resource),
		canonical:   make(map[string]string),
		graph:       graph.New(),
		outputKeys:  make(map[string]bool),
	}
}

// Add declares r and returns a reference to it.
//
// Every explicit dependency and every reference inside the properties must
// already be declared. Declaring the same ID again with identical content is
// a no-op; declaring it with different content fails with ErrConflictingResource.
func (t *Template) Add(r Resource) (Ref, error) {
	if !idRegex.MatchString(r.ID) {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidID, r.ID)
	}
	if r.Kind == "" {
		return Ref{}, fmt.Errorf("resource %s has no kind", r.ID)
	}

	canon, refs, err := analyze(r)
	if err != nil {
		return Ref{}, fmt.Errorf("resource %s: %w", r.ID, err)
	}

	if _, exists := t.resources[r.ID]; exists {
		if t.canonical[r.ID] == canon {
			return RefTo(r.ID), nil
		}
		return Ref{}, fmt.Errorf("%w: %s (%s) is already declared with different content", ErrConflictingResource, r.ID, r.Kind)
	}

	deps := dedupe(append(append([]string{}, r.DependsOn...), refs...))
	for _, dep := range deps {
		if dep == r.ID {
			return Ref{}, fmt.Errorf("resource %s refers to itself", r.ID)
		}
		if _, ok := t.resources[dep]; !ok {
			return Ref{}, fmt.Errorf("%w: %s depends on undeclared %s", ErrMissingDependency, r.ID, dep)
		}
	}

	t.graph.AddNode(r.ID)
	for _, dep := range deps {
		if err := t.graph.AddEdge(dep, r.ID); err != nil {
			return Ref{}, err
		}
	}

	stored := r
	stored.DependsOn = dedupe(r.DependsOn)
	t.resources[r.ID] = &stored
	t.canonical[r.ID] = canon
	t.order = append(t.order, r.ID)

	return RefTo(r.ID), nil
}

// DependOn adds explicit dependencies to an already declared resource.
// Dependencies are only ever appended.
func (t *Template) DependOn(id string, deps ...string) error {
	res, ok := t.resources[id]
	if !ok {
		return fmt.Errorf("%w: %s is not declared", ErrMissingDependency, id)
	}
	for _, dep := range deps {
		if _, ok := t.resources[dep]; !ok {
			return fmt.Errorf("%w: %s depends on undeclared %s", ErrMissingDependency, id, dep)
		}
		if dep == id || t.graph.DependsOn(dep, id) {
			return fmt.Errorf("%w: %s -> %s", graph.ErrCycle, dep, id)
		}
	}

	for _, dep := range deps {
		if err := t.graph.AddEdge(dep, id); err != nil {
			return err
		}
		res.DependsOn = dedupe(append(res.DependsOn, dep))
	}

	canon, _, err := analyze(*res)
	if err != nil {
		return err
	}
	t.canonical[id] = canon
	return nil
}

// AddOutput declares a named output. Keys are unique and referenced
// resources must be declared.
func (t *Template) AddOutput(o Output) error {
	key := o.Key()
	if o.Name == "" {
		return fmt.Errorf("output has no name")
	}
	if t.outputKeys[key] {
		return fmt.Errorf("%w: %s", ErrDuplicateOutput, key)
	}

	refs, err := references(o.Value)
	if err != nil {
		return fmt.Errorf("output %s: %w", key, err)
	}
	for _, ref := range refs {
		if _, ok := t.resources[ref]; !ok {
			return fmt.Errorf("%w: output %s refers to undeclared %s", ErrMissingDependency, key, ref)
		}
	}

	t.outputKeys[key] = true
	t.outputs = append(t.outputs, o)
	return nil
}

// Has reports whether id is declared.
func (t *Template) Has(id string) bool {
	_, ok := t.resources[id]
	return ok
}

// Get returns a copy of the resource with the given ID.
func (t *Template) Get(id string) (Resource, bool) {
	r, ok := t.resources[id]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// Len returns the number of declared resources.
func (t *Template) Len() int {
	return len(t.order)
}

// Resources returns every resource in declaration order.
func (t *Template) Resources() []Resource {
	result := make([]Resource, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, *t.resources[id])
	}
	return result
}

// ResourcesOfKind returns the resources of one kind in declaration order.
func (t *Template) ResourcesOfKind(kind Kind) []Resource {
	var result []Resource
	for _, id := range t.order {
		if r := t.resources[id]; r.Kind == kind {
			result = append(result, *r)
		}
	}
	return result
}

// Dependencies returns the direct dependencies of id, explicit and implicit.
func (t *Template) Dependencies(id string) ([]string, error) {
	return t.graph.Dependencies(id)
}

// DependsOn reports whether id transitively depends on dep.
func (t *Template) DependsOn(id, dep string) bool {
	return t.graph.DependsOn(id, dep)
}

// Outputs returns the declared outputs in declaration order.
func (t *Template) Outputs() []Output {
	return append([]Output(nil), t.outputs...)
}

// Output looks up an output by its stack-qualified key.
func (t *Template) Output(key string) (Output, bool) {
	for _, o := range t.outputs {
		if o.Key() == key {
			return o, true
		}
	}
	return Output{}, false
}

// Validate checks the graph for cycles.
func (t *Template) Validate() error {
	return t.graph.DetectCycles()
}

// ApplyOrder returns every resource ID in an order where each resource
// follows all of its dependencies.
func (t *Template) ApplyOrder() ([]string, error) {
	return t.graph.TopologicalSort()
}

// analyze returns the canonical form of r used for conflict detection and
// the IDs its properties refer to.
func analyze(r Resource) (string, []string, error) {
	deps := append([]string(nil), r.DependsOn...)
	sort.Strings(deps)

	canon, err := json.Marshal(struct {
		Kind           Kind
		Properties     map[string]any
		DependsOn      []string
		DeletionPolicy DeletionPolicy
	}{r.Kind, r.Properties, dedupe(deps), r.DeletionPolicy})
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode properties: %w", err)
	}

	refs, err := references(r.Properties)
	if err != nil {
		return "", nil, err
	}
	return string(canon), refs, nil
}

// references returns the resource IDs referred to by v, through Ref values
// or substitution tokens in strings and map keys.
func references(v any) ([]string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}

	var refs []string
	var walk func(any)
	walk = func(node any) {
		switch n := node.(type) {
		case map[string]any:
			if id, ok := n["Ref"].(string); ok && len(n) == 1 && !strings.Contains(id, "::") {
				refs = append(refs, id)
				return
			}
			if parts, ok := n["Fn::GetAtt"].([]any); ok && len(n) == 1 && len(parts) > 0 {
				if id, ok := parts[0].(string); ok {
					refs = append(refs, id)
				}
				return
			}
			keys := make([]string, 0, len(n))
			for k := range n {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				refs = append(refs, tokenIDs(k)...)
				walk(n[k])
			}
		case []any:
			for _, item := range n {
				walk(item)
			}
		case string:
			refs = append(refs, tokenIDs(n)...)
		}
	}
	walk(generic)

	return dedupe(refs), nil
}

func tokenIDs(s string) []string {
	if !strings.Contains(s, "${") {
		return nil
	}
	var ids []string
	for _, m := range tokenRegex.FindAllStringSubmatch(s, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
