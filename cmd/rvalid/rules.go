package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/rvalid/pkg/validation"
)

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the registered validation rules",
		Long: `List every registered validation rule with its default message.

A {0} in a message is replaced with the rule's parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			names := validation.Default.Names()

			width := 0
			for _, name := range names {
				width = max(width, len(name))
			}
			for _, name := range names {
				def, err := validation.Lookup(name)
				if err != nil {
					return err
				}
				padded := fmt.Sprintf("%-*s", width, name)
				fmt.Fprintf(out, "  %s  %s\n", color.CyanString(padded), def.Message)
			}
			return nil
		},
	}
}
