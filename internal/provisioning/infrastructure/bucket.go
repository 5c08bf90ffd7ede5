package infrastructure

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// Artifact bucket logical IDs.
const (
	BucketID           = "EMRArtifacts"
	BucketAutoDeleteID = "EMRArtifactsAutoDeleteObjects"
)

// blockAllPublicAccess sets every public-access-block flag.
func blockAllPublicAccess() s3types.PublicAccessBlockConfiguration {
	return s3types.PublicAccessBlockConfiguration{
		BlockPublicAcls:       aws.Bool(true),
		BlockPublicPolicy:     aws.Bool(true),
		IgnorePublicAcls:      aws.Bool(true),
		RestrictPublicBuckets: aws.Bool(true),
	}
}

// DeclareArtifactBucket declares the shared artifact bucket: versioned,
// closed to public access, deleted with the topology and emptied first.
func DeclareArtifactBucket(ctx *provisioning.Context) (topology.Ref, error) {
	props := map[string]any{
		"VersioningConfiguration": map[string]any{
			"Status": string(s3types.BucketVersioningStatusEnabled),
		},
		"PublicAccessBlockConfiguration": blockAllPublicAccess(),
		"BucketEncryption": map[string]any{
			"ServerSideEncryptionConfiguration": []any{
				map[string]any{
					"ServerSideEncryptionByDefault": map[string]any{
						"SSEAlgorithm": string(s3types.ServerSideEncryptionAes256),
					},
				},
			},
		},
		"Tags": ctx.Tags(phaseNetwork).Merge(map[string]string{"emrdebug:auto-delete-objects": "true"}).Build(),
	}
	if name := ctx.Config.Storage.BucketName; name != "" {
		props["BucketName"] = name
	}

	bucket, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:             BucketID,
		Kind:           topology.KindBucket,
		Properties:     props,
		DeletionPolicy: topology.DeletionPolicyDelete,
	})
	if err != nil {
		return topology.Ref{}, err
	}

	if _, err := provisioning.Declare(ctx, phaseNetwork, topology.Resource{
		ID:   BucketAutoDeleteID,
		Kind: topology.KindAutoDeleteObjects,
		Properties: map[string]any{
			"BucketName": bucket,
		},
	}); err != nil {
		return topology.Ref{}, err
	}

	ctx.State.BucketID = bucket.ID
	return bucket, nil
}
