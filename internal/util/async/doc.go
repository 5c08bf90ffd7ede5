// Package async runs independent named tasks concurrently.
//
// [Run] is used by artifact staging to upload files in parallel while
// keeping the first failure attributable to the file that caused it.
package async
