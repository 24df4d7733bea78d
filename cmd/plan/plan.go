package plan

import (
	"fmt"

	"github.com/spf13/cobra"

	"sg-reconciler/cmd/cmdutils"
	"sg-reconciler/pkg/core"
)

var (
	Cmd = &cobra.Command{
		Use:   "plan",
		Short: "Preview the changes a reconciliation would apply.",
		RunE:  runPlan,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			regionFlag := cmd.Flags().Lookup("region")
			if regionFlag != nil {
				region = regionFlag.Value.String()
			}

			profileFlag := cmd.Flags().Lookup("profile")
			if profileFlag != nil {
				profile = profileFlag.Value.String()
			}

			if file == "" {
				return fmt.Errorf("no declaration file provided")
			}

			return nil
		},
	}

	file    string
	region  string
	profile string
)

func runPlan(cmd *cobra.Command, args []string) error {
	decl, err := core.LoadDeclaration(file)
	if err != nil {
		return err
	}

	result, err := core.Apply(cmd.Context(), *decl, region, profile, true)
	if err != nil {
		return err
	}

	cmdutils.PrintResult(result, true)
	return nil
}

func init() {
	includeValidateFlags(Cmd)
}

func includeValidateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&file, "file", "f", "",
		"Path to the YAML declaration of the Security Group. Default: none")
}
