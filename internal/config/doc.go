// Package config defines the configuration model for the remote-debugging topology.
//
// A [Config] describes the two peered networks, the shared artifact bucket,
// the bastion, the orchestration cluster and its autoscaling policy, and the
// two batch-compute front ends (virtual cluster and serverless application).
// It is loaded from YAML, overlaid with environment variables, defaulted,
// and validated before any resource is declared.
package config
