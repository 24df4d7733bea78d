package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"

	"sg-reconciler/pkg/core/awsClients"
	coreTypes "sg-reconciler/pkg/core/types"
)

// Reconciler converges the rule set of one Security Group to a declared
// desired state. Repeated runs with the same declaration are idempotent: the
// second run reports no changes.
type Reconciler struct {
	client Client
	dryRun bool
}

type Option func(*Reconciler)

// WithDryRun suppresses all mutating provider calls. The full validation and
// diff logic still runs and the change report is populated as if the
// mutations had succeeded.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) {
		r.dryRun = dryRun
	}
}

func New(client Client, opts ...Option) *Reconciler {
	r := &Reconciler{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply loads the AWS configuration for the given region and profile and
// reconciles the declaration against the live account.
func Apply(ctx context.Context, decl Declaration, region string, profile string, dryRun bool) (*Result, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region), config.WithSharedConfigProfile(profile))
	if err != nil {
		return nil, err
	}
	return New(awsClients.NewAwsEc2Client(cfg), WithDryRun(dryRun)).Reconcile(ctx, decl)
}

// Reconcile runs one reconciliation pass: fetch all groups once, resolve the
// target, then diff and apply. Mutations run one at a time, additions before
// removals; the first failure aborts the run without rollback.
func (r *Reconciler) Reconcile(ctx context.Context, decl Declaration) (*Result, error) {
	if err := decl.Validate(); err != nil {
		return nil, err
	}

	groups, err := r.client.ListSecurityGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list security groups: %w", err)
	}

	target := findGroup(groups, decl.Name, decl.VpcId)

	if decl.state() == StateAbsent {
		return r.ensureAbsent(ctx, target)
	}
	return r.ensurePresent(ctx, target, groups, decl)
}

// ensureAbsent deletes the target group wholesale when it exists. No rule
// diff is performed.
func (r *Reconciler) ensureAbsent(ctx context.Context, target *coreTypes.SecurityGroup) (*Result, error) {
	res := &Result{}
	if target == nil {
		return res, nil
	}
	if !r.dryRun {
		if err := r.client.DeleteSecurityGroup(ctx, target.Id); err != nil {
			return nil, fmt.Errorf("delete security group %s: %w", target.Id, err)
		}
	}
	res.Changed = true
	return res, nil
}

// ensurePresent creates the target group when missing and then converges its
// rule set, whether or not it was just created.
func (r *Reconciler) ensurePresent(ctx context.Context, target *coreTypes.SecurityGroup,
	groups []coreTypes.SecurityGroup, decl Declaration) (*Result, error) {

	res := &Result{}

	group := target
	if group == nil {
		group = &coreTypes.SecurityGroup{
			Name:        decl.Name,
			Description: decl.Description,
			VpcId:       decl.VpcId,
		}
		if !r.dryRun {
			id, err := r.client.CreateSecurityGroup(ctx, decl.Name, decl.Description, decl.VpcId)
			if err != nil {
				return nil, fmt.Errorf("create security group %q: %w", decl.Name, err)
			}
			group.Id = id
		}
		res.Report.Created = append(res.Report.Created, decl.Name)
		res.Changed = true
	}

	p, err := buildPlan(group, decl.Rules, groups)
	if err != nil {
		return nil, err
	}

	apply := newApplier(r.client, r.dryRun, &res.Report)
	if err := apply.createGroups(ctx, p.groupsToCreate, group.VpcId); err != nil {
		return nil, err
	}
	if err := apply.applyAdditions(ctx, group.Id, p.toAdd); err != nil {
		return nil, err
	}
	if err := apply.applyRevocations(ctx, group.Id, p.toRevoke); err != nil {
		return nil, err
	}

	if len(res.Report.Added) > 0 || len(res.Report.Removed) > 0 {
		res.Changed = true
	}
	if group.Id != "" {
		groupId := group.Id
		res.GroupId = &groupId
	}
	return res, nil
}
