package types

// Direction tells whether a rule filters inbound or outbound traffic.
type Direction string

const (
	DirectionIngress Direction = "ingress"
	DirectionEgress  Direction = "egress"
)

// AllProtocols is the provider sentinel for a rule matching every protocol.
// Such a rule carries no port range.
const AllProtocols = "-1"

// Grant is one concrete source or destination attached to a rule: either a
// peer Security Group reference or a CIDR block, never both. The provider can
// fan out a single rule into multiple Grants, each independently revocable.
type Grant struct {
	GroupId   *string
	GroupName *string
	CidrIp    *string
}

// Rule is a single traffic filter of a Security Group.
type Rule struct {
	IpProtocol string
	FromPort   *int32
	ToPort     *int32
	Grants     []Grant
}

type SecurityGroup struct {
	Id           string
	Name         string
	Description  string
	VpcId        *string
	IngressRules []Rule
	EgressRules  []Rule
}

// Permission is the unit handed to a single authorize or revoke call. Exactly
// one of CidrIp and GroupId is set.
type Permission struct {
	IpProtocol string
	FromPort   *int32
	ToPort     *int32
	CidrIp     *string
	GroupId    *string
}
