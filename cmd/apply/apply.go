package apply

import (
	"fmt"

	"github.com/spf13/cobra"

	"sg-reconciler/cmd/cmdutils"
	"sg-reconciler/pkg/core"
)

var (
	Cmd = &cobra.Command{
		Use:   "apply",
		Short: "Reconcile a Security Group to a declared rule set.",
		RunE:  runApply,
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
	dryRun  bool
	region  string
	profile string
)

func runApply(cmd *cobra.Command, args []string) error {
	decl, err := core.LoadDeclaration(file)
	if err != nil {
		return err
	}

	result, err := core.Apply(cmd.Context(), *decl, region, profile, dryRun)
	if err != nil {
		return err
	}

	cmdutils.PrintResult(result, dryRun)
	return nil
}

func init() {
	includeValidateFlags(Cmd)
}

func includeValidateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&file, "file", "f", "",
		"Path to the YAML declaration of the Security Group. Default: none")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"[Optional] Compute and report the changes without applying them.")
}
