// cmd/archetypes/inspect.go
package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"archetype-resolver/internal/archetype"
	apperrors "archetype-resolver/internal/common/errors"
)

func ageClassesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "age-classes",
		Short: "List the age classes of the configured archetypes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.Resolver()
			if err != nil {
				return err
			}
			idx := r.AgeClasses()
			if idx == nil {
				return apperrors.NewConfigurationError(fmt.Sprintf("factory %s does not use age classes", r.Name()))
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "AGE CLASS\tARCHETYPE")
			for _, e := range idx.Entries() {
				fmt.Fprintf(w, "%s\t%s\n", e.AgeClass, e.ArchetypeURI)
			}
			for _, p := range idx.Problems() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", p)
			}
			return w.Flush()
		},
	}
}

func tableCmd(configPath *string) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the archetype each construction year in [--from, --to] resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.Resolver()
			if err != nil {
				return err
			}
			rows, err := archetype.AgeClassTable(cmd.Context(), r, from, to)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}

	cmd.Flags().IntVar(&from, "from", 1900, "first construction year")
	cmd.Flags().IntVar(&to, "to", 2020, "last construction year")
	return cmd
}
