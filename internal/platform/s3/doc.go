// Package s3 stages job artifacts into the topology's artifact bucket.
//
// The bucket itself is declared by the topology; this client only checks that
// it exists, uploads files under a prefix and lists what was staged.
package s3
