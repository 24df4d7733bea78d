package types

import (
	"fmt"
	"strconv"
)

// nullMarker stands in for an absent identity field. It is distinct from the
// empty string so that a grant with no peer group can never collide with one
// whose peer group id happens to be empty.
const nullMarker = "none"

// RuleIdentity derives the canonical identity of a single rule grant. Two
// grants describe the same rule iff their identities are equal; the provider
// offers no surrogate key for individual grants, so this string is the sole
// identity mechanism. The protocol and ports must be normalized with
// NormalizeProtocol before the identity is derived, so that provider-returned
// rules and desired specs align.
func RuleIdentity(direction Direction, protocol string, fromPort, toPort *int32, groupId, cidrIp *string) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s-%s", direction, protocol,
		portKey(fromPort), portKey(toPort), strKey(groupId), strKey(cidrIp))
}

// NormalizeProtocol rewrites the human "all" protocol to the provider
// wildcard sentinel and clears both port bounds, which the provider reports
// as unset for wildcard rules.
func NormalizeProtocol(protocol string, fromPort, toPort *int32) (string, *int32, *int32) {
	if protocol == "all" || protocol == AllProtocols {
		return AllProtocols, nil, nil
	}
	return protocol, fromPort, toPort
}

func portKey(port *int32) string {
	if port == nil {
		return nullMarker
	}
	return strconv.FormatInt(int64(*port), 10)
}

func strKey(s *string) string {
	if s == nil {
		return nullMarker
	}
	return *s
}
