package awsClients

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreTypes "sg-reconciler/pkg/core/types"
)

// fakeEc2Api serves canned responses and records the inputs it was called
// with.
type fakeEc2Api struct {
	describePages []*ec2.DescribeSecurityGroupsOutput
	describeCalls int

	createInput    *ec2.CreateSecurityGroupInput
	deleteInput    *ec2.DeleteSecurityGroupInput
	authorizeIn    *ec2.AuthorizeSecurityGroupIngressInput
	authorizeOut   *ec2.AuthorizeSecurityGroupEgressInput
	revokeIn       *ec2.RevokeSecurityGroupIngressInput
	revokeOut      *ec2.RevokeSecurityGroupEgressInput
	createdGroupId string
}

func (f *fakeEc2Api) DescribeSecurityGroups(_ context.Context, _ *ec2.DescribeSecurityGroupsInput,
	_ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	page := f.describePages[f.describeCalls]
	f.describeCalls++
	return page, nil
}

func (f *fakeEc2Api) CreateSecurityGroup(_ context.Context, params *ec2.CreateSecurityGroupInput,
	_ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	f.createInput = params
	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String(f.createdGroupId)}, nil
}

func (f *fakeEc2Api) DeleteSecurityGroup(_ context.Context, params *ec2.DeleteSecurityGroupInput,
	_ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	f.deleteInput = params
	return &ec2.DeleteSecurityGroupOutput{}, nil
}

func (f *fakeEc2Api) AuthorizeSecurityGroupIngress(_ context.Context, params *ec2.AuthorizeSecurityGroupIngressInput,
	_ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	f.authorizeIn = params
	return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
}

func (f *fakeEc2Api) AuthorizeSecurityGroupEgress(_ context.Context, params *ec2.AuthorizeSecurityGroupEgressInput,
	_ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupEgressOutput, error) {
	f.authorizeOut = params
	return &ec2.AuthorizeSecurityGroupEgressOutput{}, nil
}

func (f *fakeEc2Api) RevokeSecurityGroupIngress(_ context.Context, params *ec2.RevokeSecurityGroupIngressInput,
	_ ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error) {
	f.revokeIn = params
	return &ec2.RevokeSecurityGroupIngressOutput{}, nil
}

func (f *fakeEc2Api) RevokeSecurityGroupEgress(_ context.Context, params *ec2.RevokeSecurityGroupEgressInput,
	_ ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupEgressOutput, error) {
	f.revokeOut = params
	return &ec2.RevokeSecurityGroupEgressOutput{}, nil
}

func TestDescribeSecurityGroupsPaginatesAndConverts(t *testing.T) {
	api := &fakeEc2Api{
		describePages: []*ec2.DescribeSecurityGroupsOutput{
			{
				NextToken: aws.String("page-2"),
				SecurityGroups: []ec2Types.SecurityGroup{
					{
						GroupId:     aws.String("sg-1"),
						GroupName:   aws.String("web"),
						Description: aws.String("web servers"),
						VpcId:       aws.String("vpc-1"),
						IpPermissions: []ec2Types.IpPermission{
							{
								IpProtocol: aws.String("tcp"),
								FromPort:   aws.Int32(443),
								ToPort:     aws.Int32(443),
								IpRanges: []ec2Types.IpRange{
									{CidrIp: aws.String("0.0.0.0/0")},
									{CidrIp: aws.String("10.0.0.0/8")},
								},
								UserIdGroupPairs: []ec2Types.UserIdGroupPair{
									{GroupId: aws.String("sg-2"), GroupName: aws.String("db")},
								},
							},
						},
					},
				},
			},
			{
				SecurityGroups: []ec2Types.SecurityGroup{
					{
						GroupId:     aws.String("sg-2"),
						GroupName:   aws.String("db"),
						Description: aws.String("databases"),
						VpcId:       aws.String("vpc-1"),
						IpPermissionsEgress: []ec2Types.IpPermission{
							{
								IpProtocol: aws.String("-1"),
								IpRanges:   []ec2Types.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
							},
						},
					},
				},
			},
		},
	}

	client := NewAwsEc2ClientWithApi(api)
	groups, err := client.ListSecurityGroups(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, api.describeCalls)
	require.Len(t, groups, 2)

	web := groups[0]
	assert.Equal(t, "sg-1", web.Id)
	assert.Equal(t, "web", web.Name)
	require.Len(t, web.IngressRules, 1)
	// One grant per referenced group and per cidr range.
	require.Len(t, web.IngressRules[0].Grants, 3)
	first := web.IngressRules[0].Grants[0]
	require.NotNil(t, first.GroupId)
	assert.Equal(t, "sg-2", *first.GroupId)

	db := groups[1]
	require.Len(t, db.EgressRules, 1)
	assert.Equal(t, coreTypes.AllProtocols, db.EgressRules[0].IpProtocol)
	assert.Nil(t, db.EgressRules[0].FromPort)
}

func TestCreateSecurityGroup(t *testing.T) {
	api := &fakeEc2Api{createdGroupId: "sg-new"}
	client := NewAwsEc2ClientWithApi(api)

	id, err := client.CreateSecurityGroup(context.Background(), "web", "web servers", aws.String("vpc-1"))
	require.NoError(t, err)

	assert.Equal(t, "sg-new", id)
	require.NotNil(t, api.createInput)
	assert.Equal(t, "web", *api.createInput.GroupName)
	assert.Equal(t, "web servers", *api.createInput.Description)
	assert.Equal(t, "vpc-1", *api.createInput.VpcId)
}

func TestDeleteSecurityGroup(t *testing.T) {
	api := &fakeEc2Api{}
	client := NewAwsEc2ClientWithApi(api)

	require.NoError(t, client.DeleteSecurityGroup(context.Background(), "sg-1"))
	require.NotNil(t, api.deleteInput)
	assert.Equal(t, "sg-1", *api.deleteInput.GroupId)
}

func TestAuthorizeIngressBuildsCidrPermission(t *testing.T) {
	api := &fakeEc2Api{}
	client := NewAwsEc2ClientWithApi(api)

	perm := coreTypes.Permission{
		IpProtocol: "tcp",
		FromPort:   aws.Int32(443),
		ToPort:     aws.Int32(443),
		CidrIp:     aws.String("0.0.0.0/0"),
	}
	require.NoError(t, client.AuthorizeIngress(context.Background(), "sg-1", perm))

	require.NotNil(t, api.authorizeIn)
	assert.Equal(t, "sg-1", *api.authorizeIn.GroupId)
	require.Len(t, api.authorizeIn.IpPermissions, 1)
	applied := api.authorizeIn.IpPermissions[0]
	require.Len(t, applied.IpRanges, 1)
	assert.Equal(t, "0.0.0.0/0", *applied.IpRanges[0].CidrIp)
	assert.Empty(t, applied.UserIdGroupPairs)
}

func TestAuthorizeEgressBuildsPeerPermission(t *testing.T) {
	api := &fakeEc2Api{}
	client := NewAwsEc2ClientWithApi(api)

	perm := coreTypes.Permission{
		IpProtocol: "tcp",
		FromPort:   aws.Int32(5432),
		ToPort:     aws.Int32(5432),
		GroupId:    aws.String("sg-2"),
	}
	require.NoError(t, client.AuthorizeEgress(context.Background(), "sg-1", perm))

	require.NotNil(t, api.authorizeOut)
	require.Len(t, api.authorizeOut.IpPermissions, 1)
	applied := api.authorizeOut.IpPermissions[0]
	require.Len(t, applied.UserIdGroupPairs, 1)
	assert.Equal(t, "sg-2", *applied.UserIdGroupPairs[0].GroupId)
	assert.Empty(t, applied.IpRanges)
}

func TestRevokeIngress(t *testing.T) {
	api := &fakeEc2Api{}
	client := NewAwsEc2ClientWithApi(api)

	perm := coreTypes.Permission{
		IpProtocol: "tcp",
		FromPort:   aws.Int32(22),
		ToPort:     aws.Int32(22),
		CidrIp:     aws.String("10.0.0.0/8"),
	}
	require.NoError(t, client.RevokeIngress(context.Background(), "sg-1", perm))

	require.NotNil(t, api.revokeIn)
	assert.Equal(t, "sg-1", *api.revokeIn.GroupId)
	require.Len(t, api.revokeIn.IpPermissions, 1)
	require.Len(t, api.revokeIn.IpPermissions[0].IpRanges, 1)
	assert.Equal(t, "10.0.0.0/8", *api.revokeIn.IpPermissions[0].IpRanges[0].CidrIp)
}
