package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	coreTypes "sg-reconciler/pkg/core/types"
)

const (
	StatePresent = "present"
	StateAbsent  = "absent"
)

// Declaration is the desired state of a single Security Group: its identity,
// lifecycle state and the complete rule set it should hold.
type Declaration struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	VpcId       *string    `yaml:"vpc_id"`
	State       string     `yaml:"state"`
	Rules       []RuleSpec `yaml:"rules"`
}

// RuleSpec is one desired rule. Exactly one of CidrIp, GroupId and GroupName
// must be set. Type defaults to ingress. A GroupName target is resolved
// within the same VPC as the target group.
type RuleSpec struct {
	Proto     string  `yaml:"proto"`
	FromPort  *int32  `yaml:"from_port"`
	ToPort    *int32  `yaml:"to_port"`
	Type      string  `yaml:"type"`
	CidrIp    *string `yaml:"cidr_ip"`
	GroupId   *string `yaml:"group_id"`
	GroupName *string `yaml:"group_name"`
}

// LoadDeclaration reads and validates a YAML declaration document.
func LoadDeclaration(path string) (*Declaration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var decl Declaration
	if err := yaml.Unmarshal(raw, &decl); err != nil {
		return nil, fmt.Errorf("parse declaration %s: %w", path, err)
	}
	if err := decl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid declaration %s: %w", path, err)
	}
	return &decl, nil
}

// Validate checks the whole declaration up front, so that a bad rule spec
// surfaces before any provider mutation is attempted.
func (d *Declaration) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch d.state() {
	case StateAbsent:
		return nil
	case StatePresent:
	default:
		return fmt.Errorf("state %q is not supported, expected %s or %s", d.State, StatePresent, StateAbsent)
	}

	if d.Description == "" {
		return fmt.Errorf("description is required when state is %s", StatePresent)
	}

	for i, spec := range d.Rules {
		if _, err := spec.target(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if _, err := spec.direction(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// state returns the desired lifecycle state, defaulting to present.
func (d *Declaration) state() string {
	if d.State == "" {
		return StatePresent
	}
	return d.State
}

type targetKind int

const (
	targetGroupId targetKind = iota
	targetGroupName
	targetCidr
)

// ruleTarget is the single source or destination a spec selects. It is built
// only through RuleSpec.target, which rejects zero or multiple selections.
type ruleTarget struct {
	kind  targetKind
	value string
}

func (s RuleSpec) target() (ruleTarget, error) {
	var targets []ruleTarget
	if s.GroupId != nil {
		targets = append(targets, ruleTarget{kind: targetGroupId, value: *s.GroupId})
	}
	if s.GroupName != nil {
		targets = append(targets, ruleTarget{kind: targetGroupName, value: *s.GroupName})
	}
	if s.CidrIp != nil {
		targets = append(targets, ruleTarget{kind: targetCidr, value: *s.CidrIp})
	}
	if len(targets) != 1 {
		return ruleTarget{}, fmt.Errorf("exactly one of group_id, group_name or cidr_ip must be set, got %d", len(targets))
	}
	return targets[0], nil
}

func (s RuleSpec) direction() (coreTypes.Direction, error) {
	switch s.Type {
	case "", string(coreTypes.DirectionIngress):
		return coreTypes.DirectionIngress, nil
	case string(coreTypes.DirectionEgress):
		return coreTypes.DirectionEgress, nil
	}
	return "", fmt.Errorf("rule type %q is not supported, expected %s or %s", s.Type,
		coreTypes.DirectionIngress, coreTypes.DirectionEgress)
}
