package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/query"
)

var (
	checkEntity      string
	checkRequirement string
)

// CheckCmd evaluates a named requirement against a named entity.
var CheckCmd = &cobra.Command{
	Use:   "check [manifest]",
	Short: "Check a requirement against an entity's capability set",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := loadProject(args)
		if err != nil {
			return err
		}

		set, ok := project.Entities[checkEntity]
		if !ok {
			return errors.Newf("entity %q is not declared in the manifest", checkEntity)
		}
		req, ok := project.Requirements[checkRequirement]
		if !ok {
			return errors.Newf("requirement %q is not declared in the manifest", checkRequirement)
		}

		res := project.Engine.CheckRequirement(set, req)
		if res.Satisfied {
			if PlainOutput {
				fmt.Printf("satisfied: %s\n", res.Trace)
			} else {
				pterm.Success.Printfln("satisfied: %s", res.Trace)
			}
			return nil
		}

		reqErr := query.NewRequirementError(req, set)
		ctx := query.ErrorContextTerminal
		if PlainOutput {
			ctx = query.ErrorContextPlain
		}
		fmt.Println(reqErr.FormatError(ctx))
		return errors.New("requirement not satisfied")
	},
}

func init() {
	CheckCmd.Flags().StringVar(&checkEntity, "entity", "", "Entity name from the manifest")
	CheckCmd.Flags().StringVar(&checkRequirement, "requirement", "", "Requirement name from the manifest")
	_ = CheckCmd.MarkFlagRequired("entity")
	_ = CheckCmd.MarkFlagRequired("requirement")
}
