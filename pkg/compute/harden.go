package compute

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/hashicorp/go-multierror"
)

// InstancesWithLegacyMetadata returns the running instances that still accept
// IMDSv1 requests (session tokens not required).
func (c *Compute) InstancesWithLegacyMetadata(ctx context.Context) ([]string, error) {
	instances, err := c.ListInstancesByState(ctx, ec2types.InstanceStateNameRunning)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, inst := range instances {
		if inst.MetadataOptions == nil {
			continue
		}
		if inst.MetadataOptions.HttpTokens != ec2types.HttpTokensStateRequired {
			ids = append(ids, aws.ToString(inst.InstanceId))
		}
	}
	return ids, nil
}

// RequireSessionTokens switches the given instances to IMDSv2-only mode: one
// metadata-options mutation per instance, no polling required. Per-instance
// failures are aggregated; the remaining instances are still hardened.
func (c *Compute) RequireSessionTokens(ctx context.Context, instanceIDs []string, hopLimit int32) error {
	if hopLimit <= 0 {
		hopLimit = 1
	}

	var errs *multierror.Error
	for _, id := range instanceIDs {
		_, err := c.api.ModifyInstanceMetadataOptions(ctx, &ec2.ModifyInstanceMetadataOptionsInput{
			InstanceId:              aws.String(id),
			HttpTokens:              ec2types.HttpTokensStateRequired,
			HttpPutResponseHopLimit: aws.Int32(hopLimit),
			HttpEndpoint:            ec2types.InstanceMetadataEndpointStateEnabled,
		})
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("instance %s: %w", id, err))
			c.log.Warn().Err(err).Str("instance", id).Msg("metadata hardening failed")
			continue
		}
		c.log.Info().Str("instance", id).Msg("session tokens now required")
	}
	return errs.ErrorOrNil()
}
