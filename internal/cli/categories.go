package cli

import (
	"fmt"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List allocation categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := lo.Map(models.Categories(), func(c models.Category, _ int) string {
				unit := "bytes"
				if c.IsCount() {
					unit = "count"
				}
				return fmt.Sprintf("%d\t%s\t%s", uint8(c), c, unit)
			})
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
