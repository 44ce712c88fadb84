package cli

import (
	"github.com/spf13/cobra"

	"github.com/flamefold/flamefold/pkg/event"
	"github.com/flamefold/flamefold/pkg/output"
)

var categoriesFormat string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List event categories and their weighing rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(categoriesFormat)
		if err != nil {
			return err
		}
		return output.NewFormatter(format, cmd.OutOrStdout()).RenderCategories(event.Categories())
	},
}

func init() {
	categoriesCmd.Flags().StringVarP(&categoriesFormat, "format", "f", string(output.FormatTable), "output format (table, json)")
	rootCmd.AddCommand(categoriesCmd)
}
