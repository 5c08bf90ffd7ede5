// Package emr declares the two job runtimes: a virtual cluster bound to a
// namespace on the orchestration cluster, and a serverless application in
// the EMR network. Both get a job role with access to the artifact bucket.
package emr
