package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// InspectCmd shows registry statistics and the occupied trie paths.
var InspectCmd = &cobra.Command{
	Use:   "inspect [manifest]",
	Short: "Show registry statistics and occupied trie paths",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := loadProject(args)
		if err != nil {
			return err
		}

		if !PlainOutput {
			pterm.DefaultSection.Println("Registry")
		}
		fmt.Printf("capabilities: %d\n", project.Engine.Len())
		fmt.Printf("entities:     %d\n", len(project.Entities))
		fmt.Printf("requirements: %d\n", len(project.Requirements))
		fmt.Printf("contracts:    %d\n", len(project.Specializations))

		if !PlainOutput {
			pterm.DefaultSection.Println("Trie paths")
		} else {
			fmt.Println()
		}
		project.Engine.Inspect(os.Stdout)
		return nil
	},
}
