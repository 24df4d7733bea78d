package core

import (
	"context"
	"fmt"

	coreTypes "sg-reconciler/pkg/core/types"
)

// peerGroupDescription is used when a referenced peer group has to be created
// on demand; such groups start with an empty rule set.
const peerGroupDescription = "created by sg-reconciler"

// revocableProtocols are the only protocols dispatched to revoke calls. A
// wildcard current rule with the all-protocols sentinel is never individually
// revoked through this path; it is a documented limitation.
var revocableProtocols = map[string]bool{
	"tcp":  true,
	"udp":  true,
	"icmp": true,
}

// applier executes a plan against the provider and records every effect in
// the change report. Under dry run all mutating calls are skipped but the
// report is populated as if they succeeded. Additions run before revocations
// so replacing a rule's representation never transiently drops traffic that
// should stay allowed.
type applier struct {
	client Client
	dryRun bool
	report *ChangeReport

	// peerIds caches the ids of peer groups created during this run, so a
	// name referenced by multiple rules is created exactly once.
	peerIds map[string]string
}

func newApplier(client Client, dryRun bool, report *ChangeReport) *applier {
	return &applier{
		client:  client,
		dryRun:  dryRun,
		report:  report,
		peerIds: make(map[string]string),
	}
}

// createGroups creates every queued peer group in the target group's VPC
// before any rule references it.
func (a *applier) createGroups(ctx context.Context, names []string, vpcId *string) error {
	for _, name := range names {
		if _, ok := a.peerIds[name]; ok {
			continue
		}
		// Placeholder id under dry run: the provider never issued one.
		id := pendingPeerId(name)
		if !a.dryRun {
			created, err := a.client.CreateSecurityGroup(ctx, name, peerGroupDescription, vpcId)
			if err != nil {
				return fmt.Errorf("create security group %q: %w", name, err)
			}
			id = created
		}
		a.peerIds[name] = id
		a.report.Created = append(a.report.Created, name)
	}
	return nil
}

func (a *applier) applyAdditions(ctx context.Context, groupId string, toAdd []resolvedRule) error {
	for _, rule := range toAdd {
		perm := coreTypes.Permission{
			IpProtocol: rule.protocol,
			FromPort:   rule.fromPort,
			ToPort:     rule.toPort,
			CidrIp:     rule.cidrIp,
			GroupId:    rule.groupId,
		}
		if rule.peerName != "" {
			peerId := a.peerIds[rule.peerName]
			perm.GroupId = &peerId
		}

		if !a.dryRun {
			var err error
			switch rule.direction {
			case coreTypes.DirectionEgress:
				err = a.client.AuthorizeEgress(ctx, groupId, perm)
			default:
				err = a.client.AuthorizeIngress(ctx, groupId, perm)
			}
			if err != nil {
				return fmt.Errorf("authorize %s rule on %s: %w", rule.direction, groupId, err)
			}
		}

		added := AddedRule{
			Direction: rule.direction,
			Proto:     rule.protocol,
			FromPort:  rule.fromPort,
			ToPort:    rule.toPort,
			CidrIp:    rule.cidrIp,
		}
		if rule.peerName != "" {
			// A pending peer has no provider-issued id before creation, so
			// it is reported by name only.
			peerName := rule.peerName
			added.GroupName = &peerName
		} else {
			added.GroupId = perm.GroupId
		}
		a.report.Added = append(a.report.Added, added)
	}
	return nil
}

func (a *applier) applyRevocations(ctx context.Context, groupId string, toRevoke []pendingRevocation) error {
	for _, rev := range toRevoke {
		if !revocableProtocols[rev.rule.IpProtocol] {
			continue
		}

		perm := coreTypes.Permission{
			IpProtocol: rev.rule.IpProtocol,
			FromPort:   rev.rule.FromPort,
			ToPort:     rev.rule.ToPort,
			CidrIp:     rev.grant.CidrIp,
			GroupId:    rev.grant.GroupId,
		}

		if !a.dryRun {
			var err error
			switch rev.direction {
			case coreTypes.DirectionEgress:
				err = a.client.RevokeEgress(ctx, groupId, perm)
			default:
				err = a.client.RevokeIngress(ctx, groupId, perm)
			}
			if err != nil {
				return fmt.Errorf("revoke %s rule on %s: %w", rev.direction, groupId, err)
			}
		}

		a.report.Removed = append(a.report.Removed, RemovedRule{
			Direction: rev.direction,
			Proto:     rev.rule.IpProtocol,
			FromPort:  rev.rule.FromPort,
			ToPort:    rev.rule.ToPort,
			CidrIp:    rev.grant.CidrIp,
			GroupName: rev.grant.GroupName,
		})
	}
	return nil
}
