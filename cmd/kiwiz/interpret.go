package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kiwiz-app/kiwiz-backend/internal/tracing"
)

type interpretOutput struct {
	tracing.Directive
	Rule string `json:"rule,omitempty"`
}

func newInterpretCmd() *cobra.Command {
	var showRule bool
	cmd := &cobra.Command{
		Use:     "interpret <prompt...>",
		Short:   "Print the tracing directive for a prompt",
		Example: `  kiwiz interpret "Trace alphabet z in cursive"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, rule := tracing.InterpretWithRule(strings.Join(args, " "))
			out := interpretOutput{Directive: d}
			if showRule {
				out.Rule = rule
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&showRule, "rule", false, "include the name of the matching rule")
	return cmd
}
