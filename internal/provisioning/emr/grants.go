package emr

import (
	"github.com/aws-samples/remote-debugging-with-emr/internal/iam"
	"github.com/aws-samples/remote-debugging-with-emr/internal/provisioning"
	"github.com/aws-samples/remote-debugging-with-emr/internal/topology"
)

// jobStatements grants read-write on the artifact bucket and read on the
// public dataset.
func jobStatements(ctx *provisioning.Context) []iam.Statement {
	bucket := ctx.State.BucketID
	return []iam.Statement{
		iam.GrantReadWrite(topology.GetAtt(bucket, "Arn"), topology.Sub("${"+bucket+".Arn}/*")),
		iam.GrantReadByName(ctx.Partition(), ctx.Config.Storage.PublicDataset),
	}
}
