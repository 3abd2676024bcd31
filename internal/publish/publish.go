// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish converts Jupyter notebooks into knowledge-repo posts and
// registers them with the knowledge_repo CLI.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/knowledge-publisher/internal/krepo"
	"github.com/pdiddy/knowledge-publisher/internal/ledger"
	"github.com/pdiddy/knowledge-publisher/internal/notebook"
	"github.com/pdiddy/knowledge-publisher/pkg/types"
)

const (
	// convertedMarker names converted output files and guards the walk
	// against reprocessing them.
	convertedMarker = "-converted"

	notebookExt = ".ipynb"
)

// gitDates supplies per-file commit dates. Implemented by gitlog.Log.
type gitDates interface {
	FirstCommitDate(path string) (string, error)
	LastCommitDate(path string) (string, error)
}

// registrar registers converted notebooks. Implemented by krepo.Client.
type registrar interface {
	Add(file, destination string) (krepo.RunResult, error)
}

// recorder persists publication outcomes. Implemented by ledger.Store.
type recorder interface {
	Put(ctx context.Context, rec ledger.Record) error
}

// Metadata holds the derived values for one notebook, computed fresh per
// conversion.
type Metadata struct {
	Title     string
	Tag       string
	Link      string
	CreatedAt string
	UpdatedAt string
}

// Publisher converts and registers notebooks.
type Publisher struct {
	cfg    types.PublishConfig
	git    gitDates
	repo   registrar
	ledger recorder
}

// New returns a Publisher. ledger may be nil to disable outcome recording.
func New(cfg types.PublishConfig, git gitDates, repo registrar, ledger recorder) *Publisher {
	return &Publisher{cfg: cfg, git: git, repo: repo, ledger: ledger}
}

// Convert builds the converted in-memory document for the notebook at path:
// git dates, tag and source link, title, and the two prepended cells. It
// returns the document, the derived metadata, and the output path the
// document should be written to. Nothing is written to disk.
func (p *Publisher) Convert(path string) (*notebook.Document, Metadata, string, error) {
	created, err := p.git.FirstCommitDate(path)
	if err != nil {
		return nil, Metadata{}, "", err
	}
	updated, err := p.git.LastCommitDate(path)
	if err != nil {
		return nil, Metadata{}, "", err
	}

	tag, link, err := p.deriveTagAndLink(path)
	if err != nil {
		return nil, Metadata{}, "", err
	}

	doc, err := notebook.Load(path)
	if err != nil {
		return nil, Metadata{}, "", err
	}

	// Fall back to the filename-derived tag when no heading is found.
	title, ok := doc.Title()
	if !ok {
		title = tag
	}

	meta := Metadata{
		Title:     title,
		Tag:       tag,
		Link:      link,
		CreatedAt: created,
		UpdatedAt: updated,
	}

	header := notebook.NewHeaderCell(notebook.HeaderFields{
		Title:     meta.Title,
		Author:    p.cfg.Author,
		Tag:       meta.Tag,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
	})
	if err := doc.Prepend(header, notebook.NewLinkCell(meta.Link)); err != nil {
		return nil, Metadata{}, "", err
	}

	outPath := path
	if !p.cfg.InPlace {
		outPath = convertedPath(path)
	}
	return doc, meta, outPath, nil
}

// Register writes the document to outPath and registers it with the
// knowledge repository under <project>/<tag>. When not operating in place,
// the serialized copy is removed once the CLI returns, whatever it reported.
func (p *Publisher) Register(doc *notebook.Document, meta Metadata, outPath string) (krepo.RunResult, error) {
	if err := doc.Write(outPath); err != nil {
		return krepo.RunResult{}, err
	}

	destination := filepath.Join(p.cfg.RepoDir, p.cfg.Project, meta.Tag)
	res, err := p.repo.Add(outPath, destination)

	if !p.cfg.InPlace {
		if rmErr := os.Remove(outPath); rmErr != nil && err == nil {
			err = fmt.Errorf("removing converted copy: %w", rmErr)
		}
	}
	return res, err
}

// Status is the outcome of publishing one notebook.
type Status string

const (
	StatusPublished Status = "published"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// PublishOne converts and registers a single notebook, printing a status
// line to w. Errors are reported through the status, not returned, so a bad
// notebook never aborts a batch.
func (p *Publisher) PublishOne(ctx context.Context, path string, w io.Writer) Status {
	doc, meta, outPath, err := p.Convert(path)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
		return StatusFailed
	}

	res, err := p.Register(doc, meta, outPath)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
		return StatusFailed
	}

	p.record(ctx, path, outPath, meta, res, w)

	if !res.Ok() {
		fmt.Fprintf(w, "failed:    %s (knowledge_repo exited %d)\n", path, res.ExitCode)
		return StatusFailed
	}

	fmt.Fprintf(w, "published: %s (%s)\n", path, meta.Tag)
	return StatusPublished
}

// record writes the outcome to the ledger when one is configured. Ledger
// trouble is reported but does not change the publication outcome.
func (p *Publisher) record(ctx context.Context, path, outPath string, meta Metadata, res krepo.RunResult, w io.Writer) {
	if p.ledger == nil {
		return
	}
	rec := ledger.Record{
		Tag:        meta.Tag,
		SourcePath: path,
		OutputPath: outPath,
		Title:      meta.Title,
		Link:       meta.Link,
		CreatedAt:  meta.CreatedAt,
		UpdatedAt:  meta.UpdatedAt,
		ExitCode:   res.ExitCode,
		Output:     res.Output,
	}
	if err := p.ledger.Put(ctx, rec); err != nil {
		fmt.Fprintf(w, "  warning: ledger update failed for %s: %v\n", meta.Tag, err)
	}
}

// deriveTagAndLink takes the path segment after the source repository name,
// uses its base name without extension as the tag, and joins the same suffix
// onto the source URL.
func (p *Publisher) deriveTagAndLink(path string) (tag, link string, err error) {
	idx := strings.Index(path, p.cfg.RepoName)
	if idx < 0 {
		return "", "", fmt.Errorf("path %s does not contain repository name %q", path, p.cfg.RepoName)
	}
	suffix := path[idx+len(p.cfg.RepoName):]

	base := filepath.Base(suffix)
	tag = strings.TrimSuffix(base, filepath.Ext(base))
	if tag == "" {
		return "", "", fmt.Errorf("cannot derive tag from %s", path)
	}

	link = p.cfg.BaseURL + p.cfg.RepoName + "/blob/" + p.cfg.Branch + filepath.ToSlash(suffix)
	return tag, link, nil
}

// convertedPath inserts the converted marker before the file extension.
func convertedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + convertedMarker + ext
}
