package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jamesruggles/secuscan/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the selectable tools by category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cyan := color.New(color.FgCyan, color.Bold)
		green := color.New(color.FgGreen)
		gray := color.New(color.FgHiBlack)

		var order []tools.Category
		byCategory := make(map[tools.Category][]tools.ToolStatus)
		for _, t := range tools.Catalog() {
			if _, seen := byCategory[t.Category]; !seen {
				order = append(order, t.Category)
			}
			byCategory[t.Category] = append(byCategory[t.Category], t)
		}

		for _, c := range order {
			cyan.Printf("\n  %s\n", c)
			for _, t := range byCategory[c] {
				green.Print("    [+] ")
				fmt.Print(t.Name)
				gray.Printf("  -> %s\n", t.Report)
			}
		}
		fmt.Println()
		return nil
	},
}
