package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kangruixiang/curator/internal/database"
	"github.com/kangruixiang/curator/internal/snapshot"
)

func newExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the library out of PocketBase",
	}

	var outputDir string
	yamlCmd := &cobra.Command{
		Use:   "yaml",
		Short: "Write the library as YAML files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			dir := outputDir
			if dir == "" {
				dir = s.cfg.Export.Directory
			}
			result, err := snapshot.NewExporter(s.client, cmd.OutOrStdout()).Run(s.ctx, snapshot.NewYAMLSink(dir))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d notes, %d resources to %s\n", result.Notes, result.Resources, dir)
			return nil
		},
	}
	yamlCmd.Flags().StringVar(&outputDir, "output", "", "Output directory. Defaults to export.directory")

	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Replace the MySQL snapshot with the current library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			db, err := database.Open(s.cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()
			if err := database.Migrate(s.ctx, db); err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}

			result, err := snapshot.NewExporter(s.client, cmd.OutOrStdout()).Run(s.ctx, snapshot.NewDBSink(db))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d notes, %d note tags, %d resources\n", result.Notes, result.NoteTags, result.Resources)
			return nil
		},
	}

	exportCmd.AddCommand(yamlCmd, dbCmd)
	return exportCmd
}
