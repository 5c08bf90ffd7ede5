package tags

import "sort"

// Standard tag keys.
const (
	// KeyTopology identifies which topology a resource belongs to.
	KeyTopology = "emrdebug:topology"

	// KeyComponent identifies the component (network, cluster, ...) that declared the resource.
	KeyComponent = "emrdebug:component"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "emrdebug:managed-by"

	// KeyName is the display name shown by the cloud console.
	KeyName = "Name"

	// KeyClusterName is read by the autoscaler's security-group selector.
	KeyClusterName = "aws:eks:cluster-name"
)

// ManagedBy value.
const ManagedByEmrdebug = "emrdebug"

// Tag is a key/value pair in the cloud's list form.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// Builder provides a fluent interface for building resource tags.
type Builder struct {
	tags map[string]string
}

// NewBuilder creates a builder with the topology name pre-set.
func NewBuilder(topology string) *Builder {
	return &Builder{
		tags: map[string]string{
			KeyTopology:  topology,
			KeyManagedBy: ManagedByEmrdebug,
		},
	}
}

// WithComponent sets the declaring component.
func (b *Builder) WithComponent(component string) *Builder {
	b.tags[KeyComponent] = component
	return b
}

// WithName sets the Name tag.
func (b *Builder) WithName(name string) *Builder {
	b.tags[KeyName] = name
	return b
}

// Merge adds all tags from the provided map.
func (b *Builder) Merge(extra map[string]string) *Builder {
	for k, v := range extra {
		b.tags[k] = v
	}
	return b
}

// Map returns a copy of the tags as a map.
func (b *Builder) Map() map[string]string {
	result := make(map[string]string, len(b.tags))
	for k, v := range b.tags {
		result[k] = v
	}
	return result
}

// Build returns the tags as a list sorted by key.
func (b *Builder) Build() []Tag {
	keys := make([]string, 0, len(b.tags))
	for k := range b.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]Tag, len(keys))
	for i, k := range keys {
		result[i] = Tag{Key: k, Value: b.tags[k]}
	}
	return result
}
