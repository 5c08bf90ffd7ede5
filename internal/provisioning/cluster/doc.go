// Package cluster declares the orchestration cluster and everything that
// runs on it outside the job namespace: the identity provider, access
// bindings, the autoscaling capacity policy and the IAM-to-cluster identity
// map.
//
// The phases run in order cluster → capacity → ... → identity. Earlier
// phases only append role mappings to the shared map; the identity phase
// materializes it once, after every contributor has run.
package cluster
