package core

import (
	coreTypes "sg-reconciler/pkg/core/types"
)

// pendingRevocation is one grant of a live rule that was not re-requested by
// the desired rule set.
type pendingRevocation struct {
	direction coreTypes.Direction
	rule      coreTypes.Rule
	grant     coreTypes.Grant
}

// resolvedRule is a desired spec whose target has been resolved to a concrete
// grant argument. When the spec references a peer group that does not exist
// yet, peerName carries the name and groupId stays nil until the applier has
// created the group.
type resolvedRule struct {
	direction coreTypes.Direction
	protocol  string
	fromPort  *int32
	toPort    *int32
	cidrIp    *string
	groupId   *string
	peerName  string
}

// plan is the outcome of diffing a live group against its desired rule set.
type plan struct {
	toAdd          []resolvedRule
	toRevoke       []pendingRevocation
	groupsToCreate []string
}

// buildPlan computes the set symmetric difference between the live rules of
// group and the desired specs, keyed by rule identity. Every grant of every
// live rule is indexed into a mutable map; each desired spec that hits the
// map marks its entry as still wanted by deleting it, each miss becomes an
// addition, and whatever survives the pass was not re-requested and becomes a
// revocation. Peer groups referenced by name that do not exist in the
// snapshot are queued for creation, deduplicated, in first-reference order.
func buildPlan(group *coreTypes.SecurityGroup, specs []RuleSpec, groups []coreTypes.SecurityGroup) (*plan, error) {
	current := make(map[string]pendingRevocation)
	indexRules(current, coreTypes.DirectionIngress, group.IngressRules)
	indexRules(current, coreTypes.DirectionEgress, group.EgressRules)

	p := &plan{}
	queued := make(map[string]bool)

	for _, spec := range specs {
		target, err := spec.target()
		if err != nil {
			return nil, err
		}
		direction, err := spec.direction()
		if err != nil {
			return nil, err
		}

		protocol, fromPort, toPort := coreTypes.NormalizeProtocol(spec.Proto, spec.FromPort, spec.ToPort)

		resolved := resolvedRule{
			direction: direction,
			protocol:  protocol,
			fromPort:  fromPort,
			toPort:    toPort,
		}

		// The value the identity sees as the peer reference. For a peer that
		// is yet to be created this is a marker derived from its name that
		// cannot collide with a provider-issued group id.
		var identityGroup *string

		switch target.kind {
		case targetCidr:
			cidr := target.value
			resolved.cidrIp = &cidr
		case targetGroupId:
			groupId := target.value
			resolved.groupId = &groupId
			identityGroup = resolved.groupId
		case targetGroupName:
			// Peer groups are scoped to the target group's own VPC.
			if peer := findGroup(groups, target.value, group.VpcId); peer != nil {
				peerId := peer.Id
				resolved.groupId = &peerId
				identityGroup = resolved.groupId
			} else {
				resolved.peerName = target.value
				pendingId := pendingPeerId(target.value)
				identityGroup = &pendingId
				if !queued[target.value] {
					queued[target.value] = true
					p.groupsToCreate = append(p.groupsToCreate, target.value)
				}
			}
		}

		identity := coreTypes.RuleIdentity(direction, protocol, fromPort, toPort, identityGroup, resolved.cidrIp)
		if _, ok := current[identity]; ok {
			// Still wanted: drop it from the map so it survives untouched.
			delete(current, identity)
			continue
		}
		p.toAdd = append(p.toAdd, resolved)
	}

	// Walk the live rules a second time so that revocations come out in
	// provider order instead of map order.
	p.toRevoke = append(p.toRevoke, remainingRevocations(current, coreTypes.DirectionIngress, group.IngressRules)...)
	p.toRevoke = append(p.toRevoke, remainingRevocations(current, coreTypes.DirectionEgress, group.EgressRules)...)

	return p, nil
}

// indexRules maps the identity of every grant of every rule to its
// revocation record. Ingress and egress rules share the map: the identity
// already encodes the direction.
func indexRules(current map[string]pendingRevocation, direction coreTypes.Direction, rules []coreTypes.Rule) {
	for _, rule := range rules {
		for _, grant := range rule.Grants {
			identity := grantIdentity(direction, rule, grant)
			current[identity] = pendingRevocation{direction: direction, rule: rule, grant: grant}
		}
	}
}

func remainingRevocations(current map[string]pendingRevocation, direction coreTypes.Direction, rules []coreTypes.Rule) []pendingRevocation {
	var stale []pendingRevocation
	for _, rule := range rules {
		for _, grant := range rule.Grants {
			identity := grantIdentity(direction, rule, grant)
			if rev, ok := current[identity]; ok {
				// Drop the entry so a grant the provider happens to report
				// twice is revoked only once.
				delete(current, identity)
				stale = append(stale, rev)
			}
		}
	}
	return stale
}

// pendingPeerId is the stand-in reference for a peer group that is queued for
// creation. Provider-issued group ids never carry this prefix, so the marker
// cannot match any live grant.
func pendingPeerId(name string) string {
	return "pending-" + name
}

func grantIdentity(direction coreTypes.Direction, rule coreTypes.Rule, grant coreTypes.Grant) string {
	protocol, fromPort, toPort := coreTypes.NormalizeProtocol(rule.IpProtocol, rule.FromPort, rule.ToPort)
	return coreTypes.RuleIdentity(direction, protocol, fromPort, toPort, grant.GroupId, grant.CidrIp)
}
