// Package tags provides consistent tagging for declared cloud resources.
//
// Every resource carries the topology name and the component that declared
// it, so resources from one topology can be found and cleaned up together.
package tags
