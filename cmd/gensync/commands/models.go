package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewModelsCommand lists the generation engines the service offers.
func NewModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available generation engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup()
			if err != nil {
				return err
			}

			models, err := client.Models(cmd.Context())
			if err != nil {
				return err
			}

			rows := pterm.TableData{{"ID", "Name", "Description"}}
			for _, m := range models {
				rows = append(rows, []string{m.ID, m.Name, m.Description})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}
