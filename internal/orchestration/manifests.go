package orchestration

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// Manifests returns the cluster objects carried by manifest resources, in
// apply order.
func (r *Result) Manifests() ([]*unstructured.Unstructured, error) {
	var objs []*unstructured.Unstructured
	for _, id := range r.ApplyOrder {
		res, ok := r.Template.Get(id)
		if !ok || res.Kind != topology.KindManifest {
			continue
		}
		items, ok := res.Properties["Manifest"].([]any)
		if !ok {
			return nil, fmt.Errorf("manifest %s has no object list", id)
		}
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("manifest %s carries a %T", id, item)
			}
			objs = append(objs, &unstructured.Unstructured{Object: obj})
		}
	}
	return objs, nil
}
