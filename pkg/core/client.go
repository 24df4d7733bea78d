package core

import (
	"context"

	coreTypes "sg-reconciler/pkg/core/types"
)

// Client is the provider handle the Reconciler operates through. It is
// satisfied by awsClients.AwsEc2Client; tests substitute an in-memory fake.
// Every call may fail with a transport, auth or permission error; the
// reconciler treats any such failure as fatal and does not retry.
type Client interface {
	// ListSecurityGroups returns every Security Group visible to the caller.
	// The result is the single consistency snapshot used for both target and
	// peer group resolution within one reconciliation run.
	ListSecurityGroups(ctx context.Context) ([]coreTypes.SecurityGroup, error)

	// CreateSecurityGroup creates a group and returns its id.
	CreateSecurityGroup(ctx context.Context, name string, description string, vpcId *string) (string, error)

	DeleteSecurityGroup(ctx context.Context, groupId string) error

	AuthorizeIngress(ctx context.Context, groupId string, perm coreTypes.Permission) error
	AuthorizeEgress(ctx context.Context, groupId string, perm coreTypes.Permission) error
	RevokeIngress(ctx context.Context, groupId string, perm coreTypes.Permission) error
	RevokeEgress(ctx context.Context, groupId string, perm coreTypes.Permission) error
}
