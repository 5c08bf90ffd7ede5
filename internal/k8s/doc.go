// Package k8s builds the orchestration-cluster objects the topology declares
// and renders them as multi-document YAML.
//
// Objects are built from the typed k8s.io/api structs where one exists and
// converted to unstructured form, so custom resources (node classes, node
// pools, provisioners) and built-in kinds travel through the same path.
package k8s
