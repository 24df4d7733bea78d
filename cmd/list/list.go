package list

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sg-reconciler/cmd/cmdutils"
	"sg-reconciler/pkg/core"
	coreTypes "sg-reconciler/pkg/core/types"
)

var (
	Cmd = &cobra.Command{
		Use:   "list",
		Short: "List Security Groups with their rules.",
		Long:  "",
		RunE:  runList,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			regionFlag := cmd.Flags().Lookup("region")
			if regionFlag != nil {
				region = regionFlag.Value.String()
			}

			profileFlag := cmd.Flags().Lookup("profile")
			if profileFlag != nil {
				profile = profileFlag.Value.String()
			}

			return nil
		},
	}

	sg      *[]string
	region  string
	profile string
)

func runList(cmd *cobra.Command, args []string) error {
	var ids []string
	if sg != nil {
		ids = *sg
	}

	groups, err := core.ListSecurityGroups(cmd.Context(), ids, region, profile)
	if err != nil {
		return err
	}

	for _, group := range groups {
		printSecurityGroup(group)
	}
	return nil
}

func printSecurityGroup(group coreTypes.SecurityGroup) {
	pterm.DefaultSection.Printf("%s(%s)", group.Name, group.Id)
	bulletList := []pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("Description: %s", group.Description)},
	}
	if group.VpcId != nil {
		bulletList = append(bulletList, pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("VPC: %s", *group.VpcId)})
	}
	bulletList = appendRules(bulletList, "Ingress rules:", group.IngressRules)
	bulletList = appendRules(bulletList, "Egress rules:", group.EgressRules)
	if err := pterm.DefaultBulletList.WithItems(bulletList).Render(); err != nil {
		return
	}
}

func appendRules(bulletList []pterm.BulletListItem, title string, rules []coreTypes.Rule) []pterm.BulletListItem {
	if len(rules) == 0 {
		return bulletList
	}
	bulletList = append(bulletList, pterm.BulletListItem{Level: 0, Text: title})
	for _, rule := range rules {
		for _, grant := range rule.Grants {
			bulletList = append(bulletList, pterm.BulletListItem{Level: 1, Text: formatGrant(rule, grant)})
		}
	}
	return bulletList
}

func formatGrant(rule coreTypes.Rule, grant coreTypes.Grant) string {
	var target string
	switch {
	case grant.CidrIp != nil:
		target = *grant.CidrIp
	case grant.GroupName != nil && grant.GroupId != nil:
		target = fmt.Sprintf("%s(%s)", *grant.GroupName, *grant.GroupId)
	case grant.GroupId != nil:
		target = *grant.GroupId
	}
	protocol := rule.IpProtocol
	if protocol == coreTypes.AllProtocols {
		protocol = "all"
	}
	return fmt.Sprintf("%s %s %s", protocol, cmdutils.FormatPortRange(rule.IpProtocol, rule.FromPort, rule.ToPort), target)
}

func init() {
	includeValidateFlags(Cmd)
}

func includeValidateFlags(cmd *cobra.Command) {
	sg = cmd.Flags().StringSlice("sg", nil,
		"[Optional] Security Group Id to be filtered. It can accept multiple values divided by comma. "+
			"Default: none (if none is specified all security groups will be retrieved)")
}
