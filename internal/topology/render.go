package topology

import (
	"encoding/json"
	"fmt"
)

// Document is the rendered form of a template.
type Document struct {
	Description string                      `json:"Description,omitempty"`
	Resources   map[string]RenderedResource `json:"Resources"`
	Outputs     map[string]Output           `json:"Outputs,omitempty"`
	ApplyOrder  []string                    `json:"ApplyOrder"`
}

// RenderedResource is a resource as it appears in the rendered document.
type RenderedResource struct {
	Resource
	Metadata map[string]string `json:"Metadata,omitempty"`
}

// Document validates the template and builds its rendered form. Strings
// carrying substitution tokens are rendered as Fn::Sub.
func (t *Template) Document() (*Document, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	order, err := t.ApplyOrder()
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Description: t.Description,
		Resources:   make(map[string]RenderedResource, len(t.order)),
		ApplyOrder:  order,
	}
	for _, id := range t.order {
		r := *t.resources[id]
		if r.Properties != nil {
			props, err := substitute(r.Properties)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", id, err)
			}
			r.Properties = props.(map[string]any)
		}
		rendered := RenderedResource{Resource: r}
		if r.Component != "" {
			rendered.Metadata = map[string]string{"Component": r.Component}
		}
		doc.Resources[id] = rendered
	}
	if len(t.outputs) > 0 {
		doc.Outputs = make(map[string]Output, len(t.outputs))
		for _, o := range t.outputs {
			value, err := substitute(o.Value)
			if err != nil {
				return nil, fmt.Errorf("output %s: %w", o.Key(), err)
			}
			o.Value = value
			doc.Outputs[o.Key()] = o
		}
	}
	return doc, nil
}

// Render returns the template as indented JSON.
func (t *Template) Render() ([]byte, error) {
	doc, err := t.Document()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}
	return data, nil
}
