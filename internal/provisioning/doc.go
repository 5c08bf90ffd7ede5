// Package provisioning provides shared types and interfaces for declaring
// the remote-debugging topology.
//
// The declaration is organized into focused subpackages:
//   - infrastructure/: networks, peering, artifact bucket, bastion, ingress
//   - cluster/: orchestration cluster, access bindings, capacity policy, identity map
//   - emr/: virtual cluster, job roles, serverless application
//
// This root package contains the phase contract, the shared state that
// later phases read from earlier ones, and the observer used for logging.
package provisioning
