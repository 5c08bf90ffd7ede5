// Package infrastructure declares the network fabric of the topology: the
// two peered networks with their subnets and routes, the shared artifact
// bucket, and the remote-debugging bastion with its ingress rules.
package infrastructure
