package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tolaworks/caps/errors"
)

var (
	resolveEntity   string
	resolveContract string
)

// ResolveCmd selects the winning specialization variant for an entity.
var ResolveCmd = &cobra.Command{
	Use:   "resolve [manifest]",
	Short: "Resolve the winning specialization variant for an entity",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := loadProject(args)
		if err != nil {
			return err
		}

		set, ok := project.Entities[resolveEntity]
		if !ok {
			return errors.Newf("entity %q is not declared in the manifest", resolveEntity)
		}
		specSet, ok := project.Specializations[resolveContract]
		if !ok {
			return errors.Newf("contract %q has no specializations in the manifest", resolveContract)
		}

		body, err := project.Engine.Resolve(set, specSet)
		if err != nil {
			return err
		}

		if PlainOutput {
			fmt.Printf("%s -> %v\n", resolveContract, body)
		} else {
			pterm.Success.Printfln("%s -> %v", resolveContract, body)
		}
		return nil
	},
}

func init() {
	ResolveCmd.Flags().StringVar(&resolveEntity, "entity", "", "Entity name from the manifest")
	ResolveCmd.Flags().StringVar(&resolveContract, "contract", "", "Contract name from the manifest")
	_ = ResolveCmd.MarkFlagRequired("entity")
	_ = ResolveCmd.MarkFlagRequired("contract")
}
