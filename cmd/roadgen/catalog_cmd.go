package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kingrea/roadgen/internal/assets"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the individual asset catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := loadApp(nil)
		if err != nil {
			die("catalog: %v", err)
		}
		defer a.shutdown()
		catalog := assets.CatalogFromConfig(a.cfg.Project.Assets)
		if err := catalog.Validate(); err != nil {
			die("catalog: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(catalog))
	},
}

func renderCatalog(catalog assets.Catalog) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Name", "Size", "Factory")
	for _, e := range catalog {
		t.Row(e.Name, e.Size, e.Factory)
	}
	return t.String()
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
