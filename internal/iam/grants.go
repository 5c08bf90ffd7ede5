package iam

// Bucket access levels, matching the action sets the construct library grants.
var (
	bucketReadActions = []string{
		"s3:GetObject*",
		"s3:GetBucket*",
		"s3:List*",
	}
	bucketWriteActions = []string{
		"s3:DeleteObject*",
		"s3:PutObject",
		"s3:PutObjectLegalHold",
		"s3:PutObjectRetention",
		"s3:PutObjectTagging",
		"s3:PutObjectVersionTagging",
		"s3:Abort*",
	}
)

// BucketReadActions returns the actions granted by GrantRead.
func BucketReadActions() []string {
	return append([]string(nil), bucketReadActions...)
}

// BucketReadWriteActions returns the actions granted by GrantReadWrite.
func BucketReadWriteActions() []string {
	return append(BucketReadActions(), bucketWriteActions...)
}

// GrantRead allows reading the bucket and its objects. bucketARN and
// objectsARN may be literal strings or deferred references.
func GrantRead(bucketARN, objectsARN any) Statement {
	return Allow(BucketReadActions(), bucketARN, objectsARN)
}

// GrantReadWrite allows reading and writing the bucket and its objects.
func GrantReadWrite(bucketARN, objectsARN any) Statement {
	return Allow(BucketReadWriteActions(), bucketARN, objectsARN)
}

// GrantReadByName is GrantRead for a bucket outside the topology, known by name.
func GrantReadByName(partition, bucket string) Statement {
	bucketARN := BucketARN(partition, bucket)
	return GrantRead(bucketARN, bucketARN+"/*")
}
