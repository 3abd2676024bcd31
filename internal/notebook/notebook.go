// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notebook loads, mutates, and saves Jupyter notebook JSON.
//
// Only the cells sequence is ever touched: two constructed cells can be
// prepended, and every original cell plus every other top-level field is
// carried as raw JSON so it round-trips untouched.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Cell type tags used by this package. Notebooks may contain other types;
// they pass through unmodified.
const (
	CellMarkdown = "markdown"
	CellRaw      = "raw"
	CellCode     = "code"
)

// tldrPlaceholder fills the tldr field of every generated header.
const tldrPlaceholder = "Nothing for tldr section as of now."

// tocTitle is the auto-generated heading newer notebooks put in their first
// markdown cell. It is never accepted as a document title.
const tocTitle = "Table of Contents"

// titlePattern matches a level-1 markdown heading terminated by a line break.
var titlePattern = regexp.MustCompile(`^# (.*)\n`)

// Cell is a notebook cell built by this tool. Original cells are kept as raw
// JSON and never pass through this struct.
type Cell struct {
	CellType string         `json:"cell_type"`
	Metadata map[string]any `json:"metadata"`
	Source   []string       `json:"source"`
}

// Document is a notebook with its cells split out for mutation. All other
// top-level fields are preserved byte-for-byte.
type Document struct {
	// Cells holds each cell as raw JSON, in notebook order.
	Cells []json.RawMessage

	// rest holds every top-level field other than "cells".
	rest map[string]json.RawMessage
}

// cellPeek is the subset of cell fields inspected during title extraction.
type cellPeek struct {
	CellType string   `json:"cell_type"`
	Source   []string `json:"source"`
}

// UnmarshalJSON decodes a notebook, keeping unknown top-level fields raw.
func (d *Document) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}

	rawCells, ok := top["cells"]
	if !ok {
		return fmt.Errorf("notebook has no cells field")
	}
	var cells []json.RawMessage
	if err := json.Unmarshal(rawCells, &cells); err != nil {
		return fmt.Errorf("decoding cells: %w", err)
	}

	delete(top, "cells")
	d.Cells = cells
	d.rest = top
	return nil
}

// MarshalJSON re-encodes the notebook with the current cells sequence and
// the preserved top-level fields.
func (d *Document) MarshalJSON() ([]byte, error) {
	top := make(map[string]json.RawMessage, len(d.rest)+1)
	for k, v := range d.rest {
		top[k] = v
	}
	rawCells, err := json.Marshal(d.Cells)
	if err != nil {
		return nil, err
	}
	top["cells"] = rawCells
	return json.Marshal(top)
}

// Load reads and decodes the notebook at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notebook %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing notebook %s: %w", path, err)
	}
	return &doc, nil
}

// Write serializes the notebook as JSON to path, overwriting any existing file.
func (d *Document) Write(path string) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding notebook: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing notebook %s: %w", path, err)
	}
	return nil
}

// Prepend inserts the given cells, in order, before all existing cells.
func (d *Document) Prepend(cells ...Cell) error {
	prefix := make([]json.RawMessage, 0, len(cells)+len(d.Cells))
	for _, c := range cells {
		raw, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding cell: %w", err)
		}
		prefix = append(prefix, raw)
	}
	d.Cells = append(prefix, d.Cells...)
	return nil
}

// Title scans the cells in order for a level-1 heading on the first source
// line of a markdown cell. The auto-generated "Table of Contents" heading is
// skipped. Returns false when no cell yields a title.
func (d *Document) Title() (string, bool) {
	for _, raw := range d.Cells {
		var peek cellPeek
		if err := json.Unmarshal(raw, &peek); err != nil {
			continue
		}
		if peek.CellType != CellMarkdown || len(peek.Source) == 0 {
			continue
		}
		m := titlePattern.FindStringSubmatch(peek.Source[0])
		if m == nil {
			continue
		}
		if m[1] == tocTitle {
			continue
		}
		return m[1], true
	}
	return "", false
}

// HeaderFields holds the values written into a generated header cell.
type HeaderFields struct {
	Title     string
	Author    string
	Tag       string
	CreatedAt string
	UpdatedAt string
}

// NewHeaderCell builds the raw cell holding the fenced key-value block the
// knowledge repository requires. Every line except the last carries its line
// break, matching how notebooks store multi-line sources.
func NewHeaderCell(f HeaderFields) Cell {
	lines := []string{
		"---",
		"title: " + f.Title,
		"authors:",
		"- " + f.Author,
		"tags:",
		"- " + f.Tag,
		"created_at: " + f.CreatedAt,
		"updated_at: " + f.UpdatedAt,
		"tldr: " + tldrPlaceholder,
		"---",
	}
	source := make([]string, len(lines))
	for i, line := range lines[:len(lines)-1] {
		source[i] = line + "\n"
	}
	source[len(lines)-1] = lines[len(lines)-1]

	return Cell{
		CellType: CellRaw,
		Metadata: map[string]any{},
		Source:   source,
	}
}

// NewLinkCell builds the single-line markdown cell pointing back at the
// notebook's original location.
func NewLinkCell(link string) Cell {
	return Cell{
		CellType: CellMarkdown,
		Metadata: map[string]any{},
		Source:   []string{"Link to original notebook: " + link},
	}
}
