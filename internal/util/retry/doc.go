// Package retry retries operations with exponential backoff.
//
// Artifact staging uses it around object uploads. Errors wrapped with
// [Fatal], or rejected by a [WithRetryIf] classifier, end the loop at once.
package retry
