package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provgraph/provis/pkg/engine"
	"github.com/provgraph/provis/pkg/engine/dot"
)

// graphvizTools is the family of layout tools worth probing for. Any of
// them can drive the engine through --tool.
var graphvizTools = []string{"dot", "neato", "fdp", "sfdp", "twopi", "circo"}

// algorithmsCommand creates the algorithms command.
func (c *CLI) algorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List layout strategies and verify tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Strategies"))
			for _, name := range engine.Algorithms() {
				if name == engine.DefaultStrategy {
					fmt.Println("  " + StyleHighlight.Render(name) + " " + StyleDim.Render("(default)"))
				} else {
					fmt.Println("  " + name)
				}
			}

			printNewline()
			fmt.Println(StyleTitle.Render("Layout tools"))
			for _, tool := range graphvizTools {
				path, err := dot.ResolveTool(tool)
				if err != nil {
					fmt.Printf("  %s %-6s %s\n", styleIconError.Render(iconError), tool, StyleDim.Render("not found"))
					continue
				}
				fmt.Printf("  %s %-6s %s\n", styleIconSuccess.Render(iconSuccess), tool, StyleDim.Render(path))
			}
			return nil
		},
	}
}
