// Package orchestration assembles the full remote-debugging topology.
//
// It runs the declaration phases from internal/provisioning in a fixed
// order against one shared state and template, then checks the result.
//
// # Workflow
//
// The Assembler executes the following phases in order:
//  1. Validation - Configuration checks and warnings
//  2. Network - Networks, peering and the artifact bucket
//  3. Cluster - Orchestration cluster, identity provider and access
//  4. Capacity - Reserved lane, autoscaler and the node-selection policy
//  5. EMR Containers - Namespace binding, job role and virtual cluster
//  6. EMR Serverless - Application, security group and job role
//  7. Devbox - Bastion and debug-port ingress from every registered source
//  8. Identity - The identity map built up by the earlier phases
//
// The bastion runs after both job runtimes so every security group that
// must reach the debug port is known. The identity map runs last because
// every earlier phase may add mappings to it.
//
// # Usage
//
//	assembler := orchestration.NewAssembler(cfg, logger)
//	result, err := assembler.Assemble(ctx)
//
// Assembly is pure: nothing is created until the returned template is
// handed to a deployment engine.
package orchestration
