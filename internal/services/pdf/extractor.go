// Package pdf turns uploaded PDF bytes into plain text using pdfcpu.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
)

// TextExtractor turns a binary document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Extractor implements TextExtractor using pdfcpu content extraction.
type Extractor struct {
	tempDir string
	conf    *model.Configuration
}

// Compile-time interface assertion
var _ TextExtractor = (*Extractor)(nil)

var contentFilePattern = regexp.MustCompile(`Content_page_(\d+)`)

// NewExtractor creates a PDF text extractor writing scratch files under tempDir
// (os.TempDir() when empty).
func NewExtractor(tempDir string) *Extractor {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Extractor{
		tempDir: tempDir,
		conf:    conf,
	}
}

// ExtractText extracts the text of every page, in page order, separated by blank lines.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if !HasPDFSignature(data) {
		return "", fmt.Errorf("%w: missing %%PDF header", ErrParse)
	}

	pageCount, err := api.PageCount(bytes.NewReader(data), e.conf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	outDir, err := os.MkdirTemp(e.tempDir, "pdf-text-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContent(bytes.NewReader(data), outDir, "upload", nil, e.conf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	pages, err := readPages(outDir)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, page := range pages {
		text := strings.TrimSpace(DecodeContentStream(page.content))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	log.Debug().
		Int("page_count", pageCount).
		Int("content_streams", len(pages)).
		Int("text_chars", b.Len()).
		Msg("Extracted PDF text")

	return b.String(), nil
}

type pageContent struct {
	number  int
	content []byte
}

func readPages(dir string) ([]pageContent, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted content: %w", err)
	}

	var pages []pageContent
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := contentFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d content: %w", number, err)
		}
		pages = append(pages, pageContent{number: number, content: content})
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].number < pages[j].number
	})
	return pages, nil
}
