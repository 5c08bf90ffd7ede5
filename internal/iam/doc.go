// Package iam builds identity policy documents: service trust, storage
// grants, and the federated trust statements that let cluster workloads
// assume cloud roles with tokens from the cluster's identity provider.
//
// Statements in a document are ORed; condition entries within one statement
// are ANDed.
package iam
