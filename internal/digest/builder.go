// Package digest builds the project digest: a single markdown document made
// of per-file sections, each holding a bounded excerpt of one collected file.
package digest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/harrison/codedigest/internal/fsutil"
	"github.com/harrison/codedigest/internal/logger"
)

// Section is one file's contribution to the digest.
type Section struct {
	// Path is the file path as produced by the scanner, used verbatim in
	// the section heading
	Path string

	// Lines is the excerpt, at most the builder's line limit
	Lines []string

	// TotalLines is the file's full line count before truncation
	TotalLines int
}

// Truncated reports whether the excerpt is shorter than the file.
func (s Section) Truncated() bool {
	return s.TotalLines > len(s.Lines)
}

// Digest is the assembled document prior to rendering.
type Digest struct {
	Root      string
	Sections  []Section
	Skipped   int // files dropped due to read errors
	Collected int // total files the scanner produced
}

// Builder assembles digests from collected file lists.
//
// Selection policy: at most fileLimit files are included, taken in the exact
// order the scanner produced them. There is no relevance heuristic; the
// first files encountered win. Unreadable files are logged and skipped, the
// one place in the pipeline where partial failure is tolerated.
type Builder struct {
	fileLimit int
	lineLimit int
	log       logger.Logger
}

// NewBuilder creates a Builder with the given limits.
func NewBuilder(fileLimit, lineLimit int, log logger.Logger) *Builder {
	return &Builder{
		fileLimit: fileLimit,
		lineLimit: lineLimit,
		log:       log,
	}
}

// Build reads excerpts for up to fileLimit files and assembles a Digest.
func (b *Builder) Build(root string, files []string) *Digest {
	d := &Digest{
		Root:      root,
		Collected: len(files),
	}

	selected := files
	if len(selected) > b.fileLimit {
		selected = selected[:b.fileLimit]
		b.log.Debugf("limiting digest to first %d of %d collected files", b.fileLimit, len(files))
	}

	for _, path := range selected {
		content, err := os.ReadFile(path)
		if err != nil {
			b.log.Warnf("skipping unreadable file %s: %v", path, err)
			d.Skipped++
			continue
		}

		lines := splitLines(string(content))
		total := len(lines)
		if total > b.lineLimit {
			lines = lines[:b.lineLimit]
		}

		d.Sections = append(d.Sections, Section{
			Path:       path,
			Lines:      lines,
			TotalLines: total,
		})
	}

	return d
}

// Render produces the markdown document for a digest.
func (b *Builder) Render(d *Digest) (string, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Project Digest")
	md.PlainText("")
	md.PlainTextf("Root: `%s`", d.Root)
	md.PlainText("")
	md.PlainTextf("Generated: %s", time.Now().Format(time.RFC3339))
	md.PlainText("")
	md.PlainTextf("Files: %d included, %d collected, %d skipped",
		len(d.Sections), d.Collected, d.Skipped)
	md.PlainText("")

	for _, sec := range d.Sections {
		md.H2(sec.Path)
		md.PlainText("")
		md.CodeBlocks(highlightFor(sec.Path), strings.Join(sec.Lines, "\n"))
		md.PlainText("")
		if sec.Truncated() {
			md.PlainTextf("_Truncated to first %d of %d lines._", len(sec.Lines), sec.TotalLines)
			md.PlainText("")
		}
	}

	if err := md.Build(); err != nil {
		return "", fmt.Errorf("failed to render digest markdown: %w", err)
	}
	return buf.String(), nil
}

// Write persists the rendered digest to path, overwriting any previous
// artifact atomically.
func (b *Builder) Write(path string, d *Digest) error {
	content, err := b.Render(d)
	if err != nil {
		return err
	}
	if err := fsutil.AtomicWrite(path, []byte(content)); err != nil {
		return fmt.Errorf("failed to write digest artifact: %w", err)
	}
	return nil
}

// splitLines splits content into lines without swallowing a trailing newline
// into a phantom empty line.
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// highlightFor maps a file extension to a fenced-block syntax tag.
func highlightFor(path string) markdown.SyntaxHighlight {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return markdown.SyntaxHighlight(ext)
}
