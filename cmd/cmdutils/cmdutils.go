package cmdutils

import (
	"fmt"

	"github.com/pterm/pterm"

	"sg-reconciler/pkg/core"
	coreTypes "sg-reconciler/pkg/core/types"
)

// PrintResult renders the outcome of a reconciliation run.
func PrintResult(result *core.Result, dryRun bool) {
	if dryRun {
		pterm.Info.Println("Dry run: no changes were applied.")
	}

	if !result.Changed {
		pterm.Info.Println("No changes: the group already matches the declaration.")
		return
	}

	if result.GroupId != nil {
		pterm.Info.Println("Reconciled Security Group with ID of " + pterm.LightGreen(*result.GroupId))
	}

	// A changed run with an empty report is the absent-state path: the target
	// group was deleted wholesale, no rule diff was performed.
	if len(result.Report.Created) == 0 && len(result.Report.Added) == 0 && len(result.Report.Removed) == 0 {
		pterm.Info.Println("Removed the Security Group.")
		return
	}

	bulletList := make([]pterm.BulletListItem, 0)
	for _, name := range result.Report.Created {
		bulletList = append(bulletList, pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("created group %s", pterm.LightGreen(name))})
	}
	for _, added := range result.Report.Added {
		bulletList = append(bulletList, pterm.BulletListItem{Level: 0,
			Text: fmt.Sprintf("added %s rule %s", added.Direction, pterm.LightGreen(FormatAddedRule(added)))})
	}
	for _, removed := range result.Report.Removed {
		bulletList = append(bulletList, pterm.BulletListItem{Level: 0,
			Text: fmt.Sprintf("removed %s rule %s", removed.Direction, pterm.LightRed(FormatRemovedRule(removed)))})
	}
	if err := pterm.DefaultBulletList.WithItems(bulletList).Render(); err != nil {
		return
	}
}

func FormatAddedRule(rule core.AddedRule) string {
	var target string
	switch {
	case rule.CidrIp != nil:
		target = *rule.CidrIp
	case rule.GroupName != nil:
		target = *rule.GroupName
	case rule.GroupId != nil:
		target = *rule.GroupId
	}
	return fmt.Sprintf("%s %s %s", rule.Proto, FormatPortRange(rule.Proto, rule.FromPort, rule.ToPort), target)
}

func FormatRemovedRule(rule core.RemovedRule) string {
	var target string
	switch {
	case rule.CidrIp != nil:
		target = *rule.CidrIp
	case rule.GroupName != nil:
		target = *rule.GroupName
	}
	return fmt.Sprintf("%s %s %s", rule.Proto, FormatPortRange(rule.Proto, rule.FromPort, rule.ToPort), target)
}

// FormatPortRange renders a rule's port range. Wildcard rules have no ports.
func FormatPortRange(protocol string, fromPort, toPort *int32) string {
	if protocol == coreTypes.AllProtocols || fromPort == nil || toPort == nil {
		return "any"
	}
	if *fromPort == *toPort {
		return fmt.Sprintf("%d", *fromPort)
	}
	return fmt.Sprintf("%d-%d", *fromPort, *toPort)
}
