// cmd/archetypes/graph.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archetype-resolver/internal/common/database"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/graphdb"
	"archetype-resolver/internal/graphdb/postgres"
)

func graphCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage the postgres archetype database",
	}
	cmd.AddCommand(graphMigrateCmd(configPath))
	cmd.AddCommand(graphImportCmd(configPath))
	return cmd
}

func graphMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the archetype tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			cliLogger(cfg).Info("archetype tables ready", map[string]interface{}{
				"database": cfg.Database.Postgres.Database,
			})
			return nil
		},
	}
}

func graphImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import [archetypes.yaml]",
		Short: "Load a YAML archetype database into postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return apperrors.NewConfigurationError(err.Error())
			}
			doc, err := graphdb.ParseDocument(data)
			if err != nil {
				return apperrors.NewConfigurationError(fmt.Sprintf("%s: %v", args[0], err))
			}

			db, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			if err := postgres.Import(ctx, db, doc); err != nil {
				return err
			}
			cliLogger(cfg).Info("archetype database imported", map[string]interface{}{
				"file":          args[0],
				"archetypes":    len(doc.Archetypes),
				"constructions": len(doc.Constructions),
			})
			return nil
		},
	}
}

func cacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared redis cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "invalidate",
		Short: "Drop every cached archetype entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Backend.Cache == nil {
				return apperrors.NewConfigurationError("graphdb.cache is not enabled")
			}
			n, err := a.Backend.Cache.Invalidate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries\n", n)
			return nil
		},
	})
	return cmd
}
