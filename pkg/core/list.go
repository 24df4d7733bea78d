package core

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"

	"sg-reconciler/pkg/core/awsClients"
	coreTypes "sg-reconciler/pkg/core/types"
)

// ListSecurityGroups lists the Security Groups whose IDs are provided in the
// securityGroupIds slice, with their flattened ingress and egress rules. If
// the slice is empty, all the security groups will be retrieved.
func ListSecurityGroups(ctx context.Context, securityGroupIds []string, region string, profile string) ([]coreTypes.SecurityGroup, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region), config.WithSharedConfigProfile(profile))
	if err != nil {
		return nil, err
	}

	ec2Client := awsClients.NewAwsEc2Client(cfg)
	return ec2Client.DescribeSecurityGroups(ctx, securityGroupIds)
}
