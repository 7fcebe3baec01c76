// cmd/archetypes/resolve.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/cheggaaa/pb.v1"

	"archetype-resolver/internal/archetype"
	"archetype-resolver/internal/report"
)

func resolveCmd(configPath *string) *cobra.Command {
	var (
		ids        []int
		noProgress bool
		noExport   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the archetype of every building (or --ids) and export the assignments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(ids) == 0 {
				r, err := a.Resolver()
				if err != nil {
					return err
				}
				ids = r.Buildings()
			}

			var opts []archetype.BatchOption
			if !noProgress {
				bar := pb.New(len(ids))
				bar.Output = os.Stderr
				bar.Start()
				defer bar.Finish()
				opts = append(opts, archetype.WithProgress(func(done, _ int) { bar.Set(done) }))
			}

			res, err := archetype.RunBatch(ctx, a.Factory, ids, a.Logger, opts...)
			if err != nil {
				return err
			}

			if !noExport {
				exporters, err := a.Exporters(ctx)
				if err != nil {
					return err
				}
				if err := report.ExportAll(ctx, res, a.Logger, exporters...); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report.Summarize(res)); err != nil {
				return err
			}
			if len(res.Failed) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d buildings failed: %v\n", len(res.Failed), res.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&ids, "ids", nil, "building ids to resolve (default: all buildings)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not draw a progress bar")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "skip the configured report sinks")
	return cmd
}
