package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreTypes "sg-reconciler/pkg/core/types"
)

func TestValidateRequiresExactlyOneTarget(t *testing.T) {
	decl := Declaration{
		Name:        "web",
		Description: "web servers",
		Rules: []RuleSpec{
			{Proto: "tcp", FromPort: aws.Int32(22), ToPort: aws.Int32(22),
				CidrIp: aws.String("10.0.0.0/8"), GroupId: aws.String("sg-1234")},
		},
	}

	err := decl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")
}

func TestValidateRejectsRuleWithoutTarget(t *testing.T) {
	decl := Declaration{
		Name:        "web",
		Description: "web servers",
		Rules: []RuleSpec{
			{Proto: "tcp", FromPort: aws.Int32(22), ToPort: aws.Int32(22)},
		},
	}

	require.Error(t, decl.Validate())
}

func TestValidateRejectsUnknownRuleType(t *testing.T) {
	decl := Declaration{
		Name:        "web",
		Description: "web servers",
		Rules: []RuleSpec{
			{Proto: "tcp", Type: "sideways", CidrIp: aws.String("0.0.0.0/0")},
		},
	}

	err := decl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestValidateRejectsUnknownState(t *testing.T) {
	decl := Declaration{Name: "web", State: "paused"}

	err := decl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paused")
}

func TestValidateRequiresName(t *testing.T) {
	decl := Declaration{Description: "web servers"}

	require.Error(t, decl.Validate())
}

func TestValidateAbsentSkipsRuleChecks(t *testing.T) {
	// A declaration being torn down does not need a description or valid rules.
	decl := Declaration{
		Name:  "web",
		State: StateAbsent,
		Rules: []RuleSpec{{Proto: "tcp"}},
	}

	require.NoError(t, decl.Validate())
}

func TestDirectionDefaultsToIngress(t *testing.T) {
	direction, err := RuleSpec{Proto: "tcp", CidrIp: aws.String("0.0.0.0/0")}.direction()

	require.NoError(t, err)
	assert.Equal(t, coreTypes.DirectionIngress, direction)
}

func TestLoadDeclaration(t *testing.T) {
	doc := `
name: web
description: web servers
vpc_id: vpc-12345678
rules:
  - proto: tcp
    from_port: 443
    to_port: 443
    cidr_ip: 0.0.0.0/0
  - proto: tcp
    from_port: 5432
    to_port: 5432
    group_name: db
    type: egress
`
	path := filepath.Join(t.TempDir(), "web.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	decl, err := LoadDeclaration(path)
	require.NoError(t, err)

	assert.Equal(t, "web", decl.Name)
	assert.Equal(t, StatePresent, decl.state())
	require.NotNil(t, decl.VpcId)
	assert.Equal(t, "vpc-12345678", *decl.VpcId)
	require.Len(t, decl.Rules, 2)

	first := decl.Rules[0]
	require.NotNil(t, first.CidrIp)
	assert.Equal(t, "0.0.0.0/0", *first.CidrIp)
	require.NotNil(t, first.FromPort)
	assert.Equal(t, int32(443), *first.FromPort)

	second := decl.Rules[1]
	require.NotNil(t, second.GroupName)
	assert.Equal(t, "db", *second.GroupName)
	assert.Equal(t, "egress", second.Type)
}

func TestLoadDeclarationRejectsInvalidDocument(t *testing.T) {
	doc := `
name: web
description: web servers
rules:
  - proto: tcp
    cidr_ip: 0.0.0.0/0
    group_id: sg-1234
`
	path := filepath.Join(t.TempDir(), "web.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadDeclaration(path)
	require.Error(t, err)
}

func TestLoadDeclarationMissingFile(t *testing.T) {
	_, err := LoadDeclaration(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
