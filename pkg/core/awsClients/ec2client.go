package awsClients

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	coreTypes "sg-reconciler/pkg/core/types"
)

const MaxResults = 1000

// Ec2Api is the subset of the EC2 API used by the reconciler. Narrowing the
// client to these operations lets tests substitute a fake without touching
// a real SDK client.
type Ec2Api interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput,
		optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput,
		optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	DeleteSecurityGroup(ctx context.Context, params *ec2.DeleteSecurityGroupInput,
		optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput,
		optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	AuthorizeSecurityGroupEgress(ctx context.Context, params *ec2.AuthorizeSecurityGroupEgressInput,
		optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupEgressOutput, error)
	RevokeSecurityGroupIngress(ctx context.Context, params *ec2.RevokeSecurityGroupIngressInput,
		optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error)
	RevokeSecurityGroupEgress(ctx context.Context, params *ec2.RevokeSecurityGroupEgressInput,
		optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupEgressOutput, error)
}

type AwsEc2Client struct {
	client Ec2Api
}

func NewAwsEc2Client(cfg aws.Config) *AwsEc2Client {
	return &AwsEc2Client{
		client: ec2.NewFromConfig(cfg),
	}
}

// NewAwsEc2ClientWithApi wraps an existing Ec2Api implementation. Used by
// tests to inject a fake.
func NewAwsEc2ClientWithApi(api Ec2Api) *AwsEc2Client {
	return &AwsEc2Client{client: api}
}

// DescribeSecurityGroups returns the Security Groups whose IDs are in the
// input slice, converted to core types. If the slice is empty, all the
// security groups are retrieved.
func (c *AwsEc2Client) DescribeSecurityGroups(ctx context.Context, securityGroupIds []string) ([]coreTypes.SecurityGroup, error) {
	filterName := "group-id"
	var filters []ec2Types.Filter
	if len(securityGroupIds) > 0 {
		filters = append(filters, ec2Types.Filter{Name: &filterName, Values: securityGroupIds})
	}

	var nextToken *string = nil
	securityGroups := make([]coreTypes.SecurityGroup, 0)
	for {
		sgResponse, err := c.client.DescribeSecurityGroups(ctx,
			&ec2.DescribeSecurityGroupsInput{
				NextToken:  nextToken,
				Filters:    filters,
				MaxResults: aws.Int32(int32(MaxResults)),
			})
		if err != nil {
			return nil, err
		}
		nextToken = sgResponse.NextToken
		for _, sg := range sgResponse.SecurityGroups {
			securityGroups = append(securityGroups, toSecurityGroup(sg))
		}

		if nextToken == nil {
			break
		}
	}

	return securityGroups, nil
}

// ListSecurityGroups returns every Security Group visible to the caller.
func (c *AwsEc2Client) ListSecurityGroups(ctx context.Context) ([]coreTypes.SecurityGroup, error) {
	return c.DescribeSecurityGroups(ctx, nil)
}

func (c *AwsEc2Client) CreateSecurityGroup(ctx context.Context, name string, description string, vpcId *string) (string, error) {
	response, err := c.client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
		VpcId:       vpcId,
	})
	if err != nil {
		return "", err
	}
	if response.GroupId == nil {
		return "", fmt.Errorf("no group id returned for created security group %q", name)
	}
	return *response.GroupId, nil
}

func (c *AwsEc2Client) DeleteSecurityGroup(ctx context.Context, groupId string) error {
	_, err := c.client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: aws.String(groupId)})
	return err
}

func (c *AwsEc2Client) AuthorizeIngress(ctx context.Context, groupId string, perm coreTypes.Permission) error {
	_, err := c.client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupId),
		IpPermissions: []ec2Types.IpPermission{toIpPermission(perm)},
	})
	return err
}

func (c *AwsEc2Client) AuthorizeEgress(ctx context.Context, groupId string, perm coreTypes.Permission) error {
	_, err := c.client.AuthorizeSecurityGroupEgress(ctx, &ec2.AuthorizeSecurityGroupEgressInput{
		GroupId:       aws.String(groupId),
		IpPermissions: []ec2Types.IpPermission{toIpPermission(perm)},
	})
	return err
}

func (c *AwsEc2Client) RevokeIngress(ctx context.Context, groupId string, perm coreTypes.Permission) error {
	_, err := c.client.RevokeSecurityGroupIngress(ctx, &ec2.RevokeSecurityGroupIngressInput{
		GroupId:       aws.String(groupId),
		IpPermissions: []ec2Types.IpPermission{toIpPermission(perm)},
	})
	return err
}

func (c *AwsEc2Client) RevokeEgress(ctx context.Context, groupId string, perm coreTypes.Permission) error {
	_, err := c.client.RevokeSecurityGroupEgress(ctx, &ec2.RevokeSecurityGroupEgressInput{
		GroupId:       aws.String(groupId),
		IpPermissions: []ec2Types.IpPermission{toIpPermission(perm)},
	})
	return err
}

func toSecurityGroup(sg ec2Types.SecurityGroup) coreTypes.SecurityGroup {
	return coreTypes.SecurityGroup{
		Id:           aws.ToString(sg.GroupId),
		Name:         aws.ToString(sg.GroupName),
		Description:  aws.ToString(sg.Description),
		VpcId:        sg.VpcId,
		IngressRules: toRules(sg.IpPermissions),
		EgressRules:  toRules(sg.IpPermissionsEgress),
	}
}

// toRules flattens the permission fan-out: every IpRange and UserIdGroupPair
// of a permission becomes its own grant.
func toRules(permissions []ec2Types.IpPermission) []coreTypes.Rule {
	rules := make([]coreTypes.Rule, 0, len(permissions))
	for _, permission := range permissions {
		rule := coreTypes.Rule{
			IpProtocol: aws.ToString(permission.IpProtocol),
			FromPort:   permission.FromPort,
			ToPort:     permission.ToPort,
		}
		for _, pair := range permission.UserIdGroupPairs {
			rule.Grants = append(rule.Grants, coreTypes.Grant{GroupId: pair.GroupId, GroupName: pair.GroupName})
		}
		for _, ipRange := range permission.IpRanges {
			rule.Grants = append(rule.Grants, coreTypes.Grant{CidrIp: ipRange.CidrIp})
		}
		rules = append(rules, rule)
	}
	return rules
}

func toIpPermission(perm coreTypes.Permission) ec2Types.IpPermission {
	permission := ec2Types.IpPermission{
		IpProtocol: aws.String(perm.IpProtocol),
		FromPort:   perm.FromPort,
		ToPort:     perm.ToPort,
	}
	if perm.CidrIp != nil {
		permission.IpRanges = []ec2Types.IpRange{{CidrIp: perm.CidrIp}}
	}
	if perm.GroupId != nil {
		permission.UserIdGroupPairs = []ec2Types.UserIdGroupPair{{GroupId: perm.GroupId}}
	}
	return permission
}
