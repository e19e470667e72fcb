// Package compute provides single-request lookups and one-shot mutations
// against EC2: security group, VPC and subnet resolution, key pair hygiene,
// and instance metadata hardening. No operation here polls or sequences;
// every call is a single round trip.
package compute

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog"
)

// EC2API is the subset of the EC2 API the package depends on. *ec2.Client
// satisfies it; tests substitute a fake.
type EC2API interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error)
	DeleteKeyPair(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	ModifyInstanceMetadataOptions(ctx context.Context, params *ec2.ModifyInstanceMetadataOptionsInput, optFns ...func(*ec2.Options)) (*ec2.ModifyInstanceMetadataOptionsOutput, error)
}

// SecurityGroup is a security group's identity.
type SecurityGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VPC is a VPC's identity with its Name-style tags.
type VPC struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags,omitempty"`
}

// Subnet is a subnet's identity.
type Subnet struct {
	ID    string   `json:"id"`
	VpcID string   `json:"vpc_id"`
	Tags  []string `json:"tags,omitempty"`
}

// Compute wraps the EC2 client for lookups and hygiene operations.
type Compute struct {
	api EC2API
	log zerolog.Logger
}

// New creates a compute client.
func New(api EC2API, log zerolog.Logger) *Compute {
	return &Compute{api: api, log: log.With().Str("component", "compute").Logger()}
}

// ListSecurityGroups enumerates all security groups.
func (c *Compute) ListSecurityGroups(ctx context.Context) ([]SecurityGroup, error) {
	out, err := c.api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return nil, err
	}
	groups := make([]SecurityGroup, 0, len(out.SecurityGroups))
	for _, g := range out.SecurityGroups {
		groups = append(groups, SecurityGroup{
			ID:   aws.ToString(g.GroupId),
			Name: aws.ToString(g.GroupName),
		})
	}
	return groups, nil
}

// SecurityGroupID resolves a security group ID from a case-insensitive name
// fragment. The boolean is false when nothing matches.
func (c *Compute) SecurityGroupID(ctx context.Context, name string) (string, bool, error) {
	groups, err := c.ListSecurityGroups(ctx)
	if err != nil {
		return "", false, err
	}
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.Name), strings.ToLower(name)) {
			return g.ID, true, nil
		}
	}
	return "", false, nil
}

// ListVPCs enumerates all VPCs.
func (c *Compute) ListVPCs(ctx context.Context) ([]VPC, error) {
	out, err := c.api.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return nil, err
	}
	vpcs := make([]VPC, 0, len(out.Vpcs))
	for _, v := range out.Vpcs {
		vpcs = append(vpcs, VPC{ID: aws.ToString(v.VpcId), Tags: tagValues(v.Tags)})
	}
	return vpcs, nil
}

// VpcID resolves a VPC ID from a case-insensitive tag value fragment. The
// boolean is false when nothing matches.
func (c *Compute) VpcID(ctx context.Context, name string) (string, bool, error) {
	vpcs, err := c.ListVPCs(ctx)
	if err != nil {
		return "", false, err
	}
	for _, v := range vpcs {
		for _, tag := range v.Tags {
			if strings.Contains(strings.ToLower(tag), strings.ToLower(name)) {
				return v.ID, true, nil
			}
		}
	}
	return "", false, nil
}

// ListSubnets enumerates all subnets.
func (c *Compute) ListSubnets(ctx context.Context) ([]Subnet, error) {
	out, err := c.api.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{})
	if err != nil {
		return nil, err
	}
	subnets := make([]Subnet, 0, len(out.Subnets))
	for _, s := range out.Subnets {
		subnets = append(subnets, Subnet{
			ID:    aws.ToString(s.SubnetId),
			VpcID: aws.ToString(s.VpcId),
			Tags:  tagValues(s.Tags),
		})
	}
	return subnets, nil
}

// SubnetID resolves a subnet ID from its VPC and exact tag value. The boolean
// is false when nothing matches.
func (c *Compute) SubnetID(ctx context.Context, vpcID, name string) (string, bool, error) {
	subnets, err := c.ListSubnets(ctx)
	if err != nil {
		return "", false, err
	}
	for _, s := range subnets {
		if s.VpcID != vpcID {
			continue
		}
		for _, tag := range s.Tags {
			if tag == name {
				return s.ID, true, nil
			}
		}
	}
	return "", false, nil
}

// ListInstancesByState enumerates instances in the given state, following
// pagination until exhausted.
func (c *Compute) ListInstancesByState(ctx context.Context, state ec2types.InstanceStateName) ([]ec2types.Instance, error) {
	var (
		instances []ec2types.Instance
		token     *string
	)
	for {
		out, err := c.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{NextToken: token})
		if err != nil {
			return nil, err
		}
		for _, r := range out.Reservations {
			for _, inst := range r.Instances {
				if inst.State != nil && inst.State.Name == state {
					instances = append(instances, inst)
				}
			}
		}
		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			break
		}
		token = out.NextToken
	}
	return instances, nil
}

// InstanceID resolves a running instance's ID from an exact tag value. The
// boolean is false when nothing matches.
func (c *Compute) InstanceID(ctx context.Context, name string) (string, bool, error) {
	instances, err := c.ListInstancesByState(ctx, ec2types.InstanceStateNameRunning)
	if err != nil {
		return "", false, err
	}
	for _, inst := range instances {
		for _, tag := range inst.Tags {
			if aws.ToString(tag.Value) == name {
				return aws.ToString(inst.InstanceId), true, nil
			}
		}
	}
	return "", false, nil
}

func tagValues(tags []ec2types.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	values := make([]string, 0, len(tags))
	for _, t := range tags {
		values = append(values, aws.ToString(t.Value))
	}
	return values
}
