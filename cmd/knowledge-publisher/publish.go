package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/knowledge-publisher/internal/gitlog"
	"github.com/pdiddy/knowledge-publisher/internal/krepo"
	"github.com/pdiddy/knowledge-publisher/internal/ledger"
	"github.com/pdiddy/knowledge-publisher/internal/publish"
	"github.com/pdiddy/knowledge-publisher/pkg/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish <source-root>",
	Short: "Convert notebooks under a directory and register them",
	Long: `Publish recursively walks the source root for .ipynb files, prepends the
knowledge-repo header and source-link cells to each, and registers the
result with the knowledge_repo CLI. Already-converted files are skipped and
a failing notebook never aborts the batch.

The knowledge repository is initialized first when its directory does not
exist yet.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("repo", "", "path to the knowledge repository (required)")
	publishCmd.Flags().Bool("inplace", false, "overwrite notebooks instead of writing converted copies")
	publishCmd.Flags().String("source-repo", "", "source repository name used as the path anchor")
	publishCmd.Flags().String("base-url", "", "base URL of the source links (default "+types.DefaultBaseURL+")")
	publishCmd.Flags().String("branch", "", "branch segment of the source links (default "+types.DefaultBranch+")")
	publishCmd.Flags().String("author", "", "author written into generated headers")
	publishCmd.Flags().String("project", "", "project subdirectory inside the knowledge repository (default "+types.DefaultProject+")")
	publishCmd.Flags().String("ledger-dir", "", "directory for the publication ledger (empty disables it)")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide the source root directory")
	}

	cfg := publishConfig(cmd, args[0])
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	repo, err := krepo.NewClient(cfg.RepoDir)
	if err != nil {
		return err
	}
	if err := repo.EnsureRepo(); err != nil {
		return err
	}

	git := gitlog.New()

	lcfg := ledgerConfig(cmd)
	var p *publish.Publisher
	if lcfg.Enabled() {
		store, err := ledger.NewStore(lcfg)
		if err != nil {
			return err
		}
		defer store.Close()
		p = publish.New(cfg, git, repo, store)
	} else {
		p = publish.New(cfg, git, repo, nil)
	}

	result, err := p.PublishTree(context.Background(), cfg.SourceDir, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d notebook(s) failed publishing", result.Failed)
	}
	return nil
}

// publishConfig builds the publish configuration from flags, falling back to
// viper (config file / environment) and then to the package defaults.
func publishConfig(cmd *cobra.Command, sourceDir string) types.PublishConfig {
	cfg := types.NewPublishConfig()
	cfg.SourceDir = sourceDir

	cfg.RepoDir = stringSetting(cmd, "repo", "repo_dir", cfg.RepoDir)
	cfg.RepoName = stringSetting(cmd, "source-repo", "repo_name", cfg.RepoName)
	cfg.BaseURL = stringSetting(cmd, "base-url", "base_url", cfg.BaseURL)
	cfg.Branch = stringSetting(cmd, "branch", "branch", cfg.Branch)
	cfg.Author = stringSetting(cmd, "author", "author", cfg.Author)
	cfg.Project = stringSetting(cmd, "project", "project", cfg.Project)

	inplace, _ := cmd.Flags().GetBool("inplace")
	cfg.InPlace = inplace || viper.GetBool("inplace")
	return cfg
}

func ledgerConfig(cmd *cobra.Command) types.LedgerConfig {
	return types.LedgerConfig{
		LedgerDir:  stringSetting(cmd, "ledger-dir", "ledger_dir", ""),
		MaxResults: viper.GetInt("max_results"),
	}
}

// stringSetting resolves a string option: flag first, then viper, then the
// built-in default.
func stringSetting(cmd *cobra.Command, flag, key, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}
