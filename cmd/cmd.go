package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"sg-reconciler/cmd/apply"
	"sg-reconciler/cmd/list"
	"sg-reconciler/cmd/plan"
)

// Execute - parse CLI arguments and execute command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Println("There was an error while executing sg-reconciler!", err)
		os.Exit(1)
	}
}

var (
	appVersion = "development"
	gitCommit  = "commit"
	rootCmd    = &cobra.Command{
		Use:              "sg-reconciler",
		Short:            "Converge AWS Security Group rule sets to a declared state.",
		Long:             ``,
		Version:          fmt.Sprintf("%s (%s)", appVersion, gitCommit),
		TraverseChildren: true,
	}

	region  string
	profile string
)

func init() {
	includeValidateFlags(rootCmd)
	rootCmd.AddCommand(apply.Cmd)
	rootCmd.AddCommand(plan.Cmd)
	rootCmd.AddCommand(list.Cmd)
}

func includeValidateFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&region, "region", "",
		"[Optional] AWS Region.")
	cmd.PersistentFlags().StringVar(&profile, "profile", "",
		"[Optional] Profile.")
}
