package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapcheck/internal/cli/config"
	"github.com/leapstack-labs/leapcheck/pkg/core"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all declared constraints",
		Long: `List every constraint declared in the discovered schema.yml files,
together with the model it belongs to and whether the model is enabled.`,
		Example: `  # List all declared constraints
  leapcheck list

  # List constraints with verbose output
  leapcheck list -v`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	groups, err := discoverSchemas(cfg, logger)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No schema.yml files found under %v\n", cfg.SourcePaths)
		return nil
	}

	comp := newCompiler(cfg, logger)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Constraint", "Subject", "Enabled"})

	var total int
	for _, group := range groups {
		for _, ms := range group.Models {
			model := core.ModelID{Group: group.Group, Name: ms.Name}
			enabled := "yes"
			if !comp.GetModelConfig(group.Group, ms.Name).Enabled {
				enabled = "no"
			}

			for _, c := range ms.Schema.Constraints {
				t.AppendRow(table.Row{model.String(), string(c.Type), constraintSubject(c), enabled})
				total++
			}
		}
	}

	t.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "(%d constraints)\n", total)

	return nil
}

// constraintSubject renders a constraint's payload for display.
func constraintSubject(c core.Constraint) string {
	if c.Type == core.ConstraintRelationships {
		subjects := make([]string, 0, len(c.References))
		for _, ref := range c.References {
			subjects = append(subjects, fmt.Sprintf("%s -> %s.%s", ref.From, ref.To, ref.Field))
		}
		return strings.Join(subjects, ", ")
	}
	return strings.Join(c.Fields, ", ")
}
