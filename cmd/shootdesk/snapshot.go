package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hylla/shootdesk/internal/app"
	"github.com/spf13/cobra"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	var (
		outPath         string
		includeArchived bool
		backup          bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every project, event, task, checklist, and contact as JSON",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "export", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			snap, err := env.svc.ExportSnapshot(ctx, includeArchived)
			if err != nil {
				return fmt.Errorf("export snapshot: %w", err)
			}
			encoded, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot json: %w", err)
			}
			encoded = append(encoded, '\n')

			if backup {
				outPath = env.paths.SnapshotFile(opts.appName, snap.ExportedAt)
			}
			if outPath == "-" {
				if _, err := opts.stdout.Write(encoded); err != nil {
					return fmt.Errorf("write snapshot to stdout: %w", err)
				}
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("create export output dir: %w", err)
			}
			if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			env.logger.Info("snapshot exported", "path", outPath, "projects", len(snap.Projects))
			if backup {
				_, err = fmt.Fprintln(opts.stdout, outPath)
			}
			return err
		}),
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().BoolVar(&includeArchived, "include-archived", true, "include archived projects")
	cmd.Flags().BoolVar(&backup, "backup", false, "write a timestamped file under the data dir's snapshots folder")
	cmd.MarkFlagsMutuallyExclusive("out", "backup")
	return cmd
}

func newImportCommand(opts *globalOptions) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert records from a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, "import", func(ctx context.Context, env *runtimeEnv, _ []string) error {
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var snap app.Snapshot
			if err := json.Unmarshal(content, &snap); err != nil {
				return fmt.Errorf("decode snapshot json: %w", err)
			}
			if err := env.svc.ImportSnapshot(ctx, snap); err != nil {
				return fmt.Errorf("import snapshot: %w", err)
			}
			_, err = fmt.Fprintf(opts.stdout, "imported %d projects, %d events, %d tasks, %d checklist items, %d contacts\n",
				len(snap.Projects), len(snap.Events), len(snap.Tasks), len(snap.ChecklistItems), len(snap.Contacts))
			return err
		}),
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
