package k8s

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// RenderYAML renders objects as a multi-document YAML stream.
func RenderYAML(objs ...*unstructured.Unstructured) ([]byte, error) {
	docs := make([]string, 0, len(objs))
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		data, err := yaml.Marshal(obj.Object)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s/%s: %w", obj.GetKind(), obj.GetName(), err)
		}
		docs = append(docs, strings.TrimSuffix(string(data), "\n"))
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return []byte(strings.Join(docs, "\n---\n") + "\n"), nil
}

// DecodeYAML parses a multi-document YAML stream into unstructured objects.
// Empty documents are skipped.
func DecodeYAML(data []byte) ([]*unstructured.Unstructured, error) {
	decoder := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)
	var objects []*unstructured.Unstructured
	for {
		obj := &unstructured.Unstructured{}
		if err := decoder.Decode(&obj.Object); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		if len(obj.Object) == 0 {
			continue
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
