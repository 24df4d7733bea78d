package core

import (
	coreTypes "sg-reconciler/pkg/core/types"
)

// ChangeReport lists everything one reconciliation run did (or, under dry
// run, would have done). All three sequences are append-only during the run
// and ordered by application order.
type ChangeReport struct {
	// Created holds the names of groups created during the run, the target
	// group included when it had to be created.
	Created []string
	// Added holds the desired specs that were applied as new grants.
	Added []AddedRule
	// Removed holds the grants that were revoked.
	Removed []RemovedRule
}

// AddedRule is one desired rule that was authorized on the target group.
type AddedRule struct {
	Direction coreTypes.Direction
	Proto     string
	FromPort  *int32
	ToPort    *int32
	CidrIp    *string
	GroupId   *string
	GroupName *string
}

// RemovedRule is one live grant that was revoked from the target group.
type RemovedRule struct {
	Direction coreTypes.Direction
	Proto     string
	FromPort  *int32
	ToPort    *int32
	CidrIp    *string
	GroupName *string
}

// Result is the outcome of a single reconciliation run.
type Result struct {
	Changed bool
	// GroupId is the id of the reconciled group. It is nil when the desired
	// state is absent, and under dry run when the group does not exist yet.
	GroupId *string
	Report  ChangeReport
}
