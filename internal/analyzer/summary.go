package analyzer

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Summary is a lightweight inventory of a report's markdown structure, used
// for the completion log line and the history ledger. Computing it never
// alters the report bytes.
type Summary struct {
	// Headings is the number of markdown headings in the report
	Headings int

	// Titles are the top-level (H1/H2) heading texts, in document order
	Titles []string
}

// Summarize parses the report as markdown and inventories its headings.
// Reports that are not markdown simply produce an empty summary; the
// external tool's output format is not ours to validate.
func Summarize(report []byte) Summary {
	var summary Summary

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(report))

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			summary.Headings++
			if heading.Level <= 2 {
				if title := extractText(heading, report); title != "" {
					summary.Titles = append(summary.Titles, title)
				}
			}
		}
		return ast.WalkContinue, nil
	})

	return summary
}

// String renders the summary for a log line.
func (s Summary) String() string {
	if s.Headings == 0 {
		return "no sections"
	}
	if len(s.Titles) == 0 {
		return pluralize(s.Headings, "heading")
	}
	return pluralize(s.Headings, "heading") + ": " + strings.Join(s.Titles, ", ")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// extractText collects the literal text of a node's direct children.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return strings.TrimSpace(buf.String())
}
