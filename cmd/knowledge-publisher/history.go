// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/knowledge-publisher/internal/ledger"
	"github.com/pdiddy/knowledge-publisher/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the publication ledger",
	Long: `History lists past publications recorded in the SQLite ledger: which
notebooks were registered, under which tag, and whether the knowledge_repo
CLI reported success.`,
	RunE: runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	if tag, _ := cmd.Flags().GetString("tag"); tag != "" {
		rec, err := store.Get(ctx, tag)
		if err != nil {
			return err
		}
		return formatHistory([]ledger.Record{rec}, cmd)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	return formatHistory(records, cmd)
}

func formatHistory(records []ledger.Record, cmd *cobra.Command) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No publications recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-40s  %-10s  %-20s  %s\n",
		"Tag", "Title", "Updated", "Published", "Exit")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 104))

	for _, r := range records {
		title := r.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		tag := r.Tag
		if len(tag) > 24 {
			tag = tag[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-40s  %-10s  %-20s  %d\n",
			tag, title, r.UpdatedAt, r.PublishedAt, r.ExitCode)
	}

	fmt.Fprintf(os.Stdout, "\n%d publications\n", len(records))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the publication ledger to YAML or JSON",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")

	switch format {
	case "yaml", "":
		path, err := store.ExportYAML(context.Background())
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
	case "json":
		path, err := store.ExportJSON(context.Background())
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// --- shared helpers ---

func openLedger(cmd *cobra.Command) (*ledger.Store, error) {
	ledgerDir := stringSetting(cmd, "ledger-dir", "ledger_dir", "")
	if ledgerDir == "" {
		return nil, fmt.Errorf("no ledger configured: provide --ledger-dir or set ledger_dir")
	}
	return ledger.NewStore(types.LedgerConfig{LedgerDir: ledgerDir})
}

func init() {
	historyCmd.PersistentFlags().String("ledger-dir", "", "directory holding the publication ledger")

	historyCmd.Flags().String("tag", "", "show a single publication by tag")
	historyCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyCmd.Flags().Bool("json", false, "output results as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
