// Package documents attaches policy documents, usually insurer PDFs, to the
// stored policies whose numbers they mention.
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/policy-sync/internal/reconcile"
	"github.com/ledongthuc/pdf"
)

// ErrNoFiles is returned when Attach is called without any paths.
var ErrNoFiles = errors.New("no documents given")

// TextFunc extracts the text of a document on disk.
type TextFunc func(path string) (string, error)

// Matcher turns file paths into documents for the reconcile engine.
type Matcher struct {
	engine *reconcile.Engine
	text   TextFunc
}

// NewMatcher creates a matcher that reads PDF text with ExtractFile.
func NewMatcher(engine *reconcile.Engine) *Matcher {
	return &Matcher{engine: engine, text: ExtractFile}
}

// WithText replaces the text extractor.
func (m *Matcher) WithText(fn TextFunc) *Matcher {
	m.text = fn
	return m
}

// Attach matches every path to a policy of the operator. The file name is
// tried first; PDF text is read only when the name matches nothing.
func (m *Matcher) Attach(ctx context.Context, paths []string, ic reconcile.ImportContext) (*reconcile.Outcome, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	docs := make([]reconcile.Document, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		doc := reconcile.Document{Name: filepath.Base(abs), Path: abs}
		if IsPDF(abs) {
			doc.Text = func() (string, error) { return m.text(abs) }
		}
		docs = append(docs, doc)
	}

	return m.engine.AttachDocuments(ctx, docs, ic)
}

// IsPDF reports whether the path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ExtractFile reads a PDF from disk and returns its text.
func ExtractFile(path string) (string, error) {
	content, err := os.ReadFile(path) //nolint:gosec // operator-supplied document path
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return ExtractText(content)
}

// ExtractText returns the plain text of every page, one page per line block.
// Pages whose text cannot be decoded are skipped.
func ExtractText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
