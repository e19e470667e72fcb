package compute

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// ListKeyPairs enumerates all key pair names.
func (c *Compute) ListKeyPairs(ctx context.Context) ([]string, error) {
	out, err := c.api.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.KeyPairs))
	for _, kp := range out.KeyPairs {
		names = append(names, aws.ToString(kp.KeyName))
	}
	return names, nil
}

// UnusedKeyPairs returns the key pairs not attached to any instance, sorted
// for stable output. A pure set difference: key pairs minus the key names
// referenced by instances in any state.
func (c *Compute) UnusedKeyPairs(ctx context.Context) ([]string, error) {
	names, err := c.ListKeyPairs(ctx)
	if err != nil {
		return nil, err
	}

	inUse := make(map[string]struct{})
	var token *string
	for {
		out, err := c.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{NextToken: token})
		if err != nil {
			return nil, err
		}
		for _, r := range out.Reservations {
			for _, inst := range r.Instances {
				if inst.KeyName != nil {
					inUse[aws.ToString(inst.KeyName)] = struct{}{}
				}
			}
		}
		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			break
		}
		token = out.NextToken
	}

	var unused []string
	for _, name := range names {
		if _, ok := inUse[name]; !ok {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	return unused, nil
}

// DeleteUnusedKeyPairs deletes every key pair not attached to any instance
// and returns the names deleted. A failure for one key pair is logged and
// does not stop the others.
func (c *Compute) DeleteUnusedKeyPairs(ctx context.Context) ([]string, error) {
	unused, err := c.UnusedKeyPairs(ctx)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, name := range unused {
		if _, err := c.api.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{KeyName: aws.String(name)}); err != nil {
			c.log.Warn().Err(err).Str("key_pair", name).Msg("key pair delete failed")
			continue
		}
		c.log.Info().Str("key_pair", name).Msg("key pair deleted")
		deleted = append(deleted, name)
	}
	return deleted, nil
}
