package reader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
)

// DocumentBoundary separates concatenated documents so downstream
// positions stay attributable.
const DocumentBoundary = "\n\n-----\n\n"

// ReadFile decodes one local source file into plain text. Supported
// types: .json (scalar leaves flattened in key order), .html/.htm
// (visible text), and anything else read as plain text.
func ReadFile(path string) (models.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SourceDocument{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := models.SourceDocument{
		ID:   uuid.NewString(),
		Name: filepath.Base(path),
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		doc.Type = "json"
		text, err := flattenJSON(data)
		if err != nil {
			return models.SourceDocument{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		doc.Content = text
	case ".html", ".htm":
		doc.Type = "html"
		text, err := htmlText(data)
		if err != nil {
			return models.SourceDocument{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		doc.Content = text
	default:
		doc.Type = "text"
		doc.Content = string(data)
	}

	return doc, nil
}

// ReadAll reads every path in input order.
func ReadAll(paths []string) ([]models.SourceDocument, error) {
	docs := make([]models.SourceDocument, 0, len(paths))
	for _, p := range paths {
		doc, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Combine concatenates documents with boundary markers, in input order.
func Combine(docs []models.SourceDocument) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, DocumentBoundary)
}

// flattenJSON walks a decoded JSON value and collects every scalar leaf
// as text. Object keys are visited in sorted order so the output is
// deterministic.
func flattenJSON(data []byte) (string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	var b strings.Builder
	walkJSON(v, &b)
	return strings.TrimSpace(b.String()), nil
}

func walkJSON(v any, b *strings.Builder) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(k)
			b.WriteString(" ")
			walkJSON(val[k], b)
		}
	case []any:
		for _, item := range val {
			walkJSON(item, b)
		}
	case string:
		b.WriteString(val)
		b.WriteString("\n")
	case float64:
		fmt.Fprintf(b, "%v\n", val)
	case bool:
		fmt.Fprintf(b, "%v\n", val)
	}
}

// htmlText extracts the visible text of an HTML label page.
func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " "), nil
}
