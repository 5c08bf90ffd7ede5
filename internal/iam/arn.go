package iam

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

// EMRContainersServiceRole is the service-linked role the virtual cluster
// service acts through inside the orchestration cluster.
const EMRContainersServiceRole = "AWSServiceRoleForAmazonEMRContainers"

// RoleARN returns the ARN of a role in account.
func RoleARN(partition, account, name string) string {
	return arn.ARN{
		Partition: partition,
		Service:   "iam",
		AccountID: account,
		Resource:  "role/" + name,
	}.String()
}

// ManagedPolicyARN returns the ARN of a provider-managed policy.
func ManagedPolicyARN(partition, name string) string {
	return arn.ARN{
		Partition: partition,
		Service:   "iam",
		AccountID: "aws",
		Resource:  "policy/" + name,
	}.String()
}

// BucketARN returns the ARN of a bucket by name.
func BucketARN(partition, bucket string) string {
	return arn.ARN{
		Partition: partition,
		Service:   "s3",
		Resource:  bucket,
	}.String()
}

// RoleNameFromARN extracts the role name from a role ARN, dropping any path.
func RoleNameFromARN(roleARN string) (string, error) {
	parsed, err := arn.Parse(roleARN)
	if err != nil {
		return "", fmt.Errorf("invalid role ARN %q: %w", roleARN, err)
	}
	if parsed.Service != "iam" || !strings.HasPrefix(parsed.Resource, "role/") {
		return "", fmt.Errorf("ARN %q is not a role", roleARN)
	}
	parts := strings.Split(parsed.Resource, "/")
	return parts[len(parts)-1], nil
}
