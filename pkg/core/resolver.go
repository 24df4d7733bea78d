package core

import (
	coreTypes "sg-reconciler/pkg/core/types"
)

// findGroup returns the first group from the snapshot whose name matches
// exactly. When both the lookup and a candidate carry a VPC id, the ids must
// match as well; a missing VPC on either side matches any. Two groups with
// the same name in the same VPC are not expected from the provider, so the
// first match wins. Returns nil when nothing matches, which for peer groups
// signals create-on-demand rather than an error.
func findGroup(groups []coreTypes.SecurityGroup, name string, vpcId *string) *coreTypes.SecurityGroup {
	for i := range groups {
		group := &groups[i]
		if group.Name != name {
			continue
		}
		if vpcId != nil && group.VpcId != nil && *group.VpcId != *vpcId {
			continue
		}
		return group
	}
	return nil
}
