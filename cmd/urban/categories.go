package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShryukGrandhi/urban/pkg/models"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List available agent categories",
	Run: func(cmd *cobra.Command, args []string) {
		for _, cat := range models.AllCategories() {
			desc, ok := models.CapabilityFor(cat)
			if !ok {
				continue
			}

			fmt.Printf("%s %s\n", color.CyanString("%-18s", string(cat)), desc.Name)
			fmt.Printf("  %s\n", desc.Description)
			if abilities := desc.Abilities(); len(abilities) > 0 {
				fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint("abilities:"), strings.Join(abilities, ", "))
			}
			if len(desc.RequiredInputs) > 0 {
				fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint("requires:"), strings.Join(desc.RequiredInputs, ", "))
			}
			fmt.Println()
		}
	},
}
