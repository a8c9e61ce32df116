// Package material loads optional reference material and packs it into
// per-mode context that is attached to every assistant request.
package material

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupported is returned for files that are neither PDF nor UTF-8 text.
var ErrUnsupported = errors.New("material must be a PDF or UTF-8 text file")

var (
	pdfMagic       = []byte("%PDF-")
	horizontalRuns = regexp.MustCompile(`[ \t\f\v]+`)
)

// Document is extracted reference text.
type Document struct {
	Source string
	Text   string
}

// Loader reads material from local paths or http(s) URLs.
type Loader struct {
	HTTPClient *http.Client
}

// Load reads location, which is a file path or an http(s) URL.
func (l Loader) Load(ctx context.Context, location string) (Document, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Document{}, errors.New("material location is empty")
	}
	local := location
	if isRemote(location) {
		cache, err := newDownloadCache(l.HTTPClient)
		if err != nil {
			return Document{}, err
		}
		local, err = cache.Fetch(ctx, location)
		if err != nil {
			return Document{}, fmt.Errorf("fetch material: %w", err)
		}
	}
	text, err := readFile(local)
	if err != nil {
		return Document{}, err
	}
	return Document{Source: location, Text: text}, nil
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func readFile(path string) (string, error) {
	head := make([]byte, len(pdfMagic))
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	n, _ := io.ReadFull(f, head)
	f.Close()
	if n == len(pdfMagic) && bytes.Equal(head, pdfMagic) {
		return readPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return strings.TrimSpace(horizontalRuns.ReplaceAllString(builder.String(), " ")), nil
}
