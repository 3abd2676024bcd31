// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration structures shared across the
// knowledge-publisher stages.
package types

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults applied by NewPublishConfig.
const (
	DefaultBaseURL = "https://github.com/ethen8181/"
	DefaultBranch  = "master"
	DefaultProject = "project"
	DefaultAuthor  = "Ethen Liu"
)

// PublishConfig holds settings for converting and registering notebooks.
type PublishConfig struct {
	// SourceDir is the root directory walked for .ipynb files.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// RepoDir is the path to the knowledge repository the converted
	// notebooks are registered with.
	RepoDir string `json:"repo_dir" yaml:"repo_dir"`

	// RepoName is the source repository name used as the path anchor when
	// deriving tags and links (e.g. "machine-learning").
	RepoName string `json:"repo_name" yaml:"repo_name"`

	// BaseURL is the prefix of the source link written into each notebook
	// (e.g. "https://github.com/ethen8181/").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Branch is the branch segment of the source link (default "master").
	Branch string `json:"branch" yaml:"branch"`

	// Author is recorded in the authors list of every generated header.
	Author string `json:"author" yaml:"author"`

	// Project is the subdirectory inside the knowledge repository that
	// converted notebooks are filed under (default "project").
	Project string `json:"project" yaml:"project"`

	// InPlace overwrites notebooks at their original path. When false, a
	// sibling copy with a "-converted" suffix is written and removed again
	// after registration.
	InPlace bool `json:"inplace" yaml:"inplace"`
}

// Validate checks that the publish configuration is usable.
func (c *PublishConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.RepoDir, validation.Required),
		validation.Field(&c.RepoName, validation.Required),
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Branch, validation.Required),
		validation.Field(&c.Project, validation.Required),
	)
}

// LedgerConfig holds settings for the publication ledger.
type LedgerConfig struct {
	// LedgerDir is the directory holding the SQLite ledger database and
	// export files. Empty disables the ledger.
	LedgerDir string `json:"ledger_dir" yaml:"ledger_dir"`

	// MaxResults is the default maximum number of history results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Enabled reports whether a ledger directory is configured.
func (c *LedgerConfig) Enabled() bool {
	return c.LedgerDir != ""
}

// Validate checks the ledger configuration.
func (c *LedgerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxResults, validation.Min(0)),
	)
}

// NewPublishConfig returns a PublishConfig with defaults filled in.
func NewPublishConfig() PublishConfig {
	return PublishConfig{
		BaseURL: DefaultBaseURL,
		Branch:  DefaultBranch,
		Project: DefaultProject,
		Author:  DefaultAuthor,
	}
}
