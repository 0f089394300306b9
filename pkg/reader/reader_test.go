package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducklingk58/medical-product-overview-system/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFileText(t *testing.T) {
	path := writeFile(t, "label.txt", "아스피린 장용정 100mg")

	doc, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "text", doc.Type)
	assert.Equal(t, "label.txt", doc.Name)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "아스피린 장용정 100mg", doc.Content)
}

func TestReadFileJSON(t *testing.T) {
	path := writeFile(t, "label.json", `{
		"효능": "해열 진통",
		"성분": ["아세틸살리실산 100mg"],
		"회수": 3
	}`)

	doc, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "json", doc.Type)
	assert.Contains(t, doc.Content, "해열 진통")
	assert.Contains(t, doc.Content, "아세틸살리실산 100mg")
	assert.Contains(t, doc.Content, "3")

	// key order is sorted, so re-reading yields identical text
	again, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, again.Content)
}

func TestReadFileJSONMalformed(t *testing.T) {
	path := writeFile(t, "label.json", `{"효능": `)

	_, err := ReadFile(path)
	assert.Error(t, err)
}

func TestReadFileHTML(t *testing.T) {
	path := writeFile(t, "label.html", `<html><head>
		<script>var x = 1;</script>
		<style>body { color: red; }</style>
	</head><body>
		<h1>아스피린 장용정</h1>
		<p>효능: 해열 진통</p>
	</body></html>`)

	doc, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "html", doc.Type)
	assert.Contains(t, doc.Content, "아스피린 장용정")
	assert.Contains(t, doc.Content, "효능: 해열 진통")
	assert.NotContains(t, doc.Content, "var x")
	assert.NotContains(t, doc.Content, "color: red")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestReadAll(t *testing.T) {
	first := writeFile(t, "a.txt", "첫번째 문서")
	second := writeFile(t, "b.txt", "두번째 문서")

	docs, err := ReadAll([]string{first, second})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// input order preserved, distinct identities assigned
	assert.Equal(t, "첫번째 문서", docs[0].Content)
	assert.Equal(t, "두번째 문서", docs[1].Content)
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
}

func TestCombine(t *testing.T) {
	docs := []models.SourceDocument{
		{Content: "첫번째 문서"},
		{Content: "두번째 문서"},
	}
	combined := Combine(docs)
	assert.Equal(t, "첫번째 문서"+DocumentBoundary+"두번째 문서", combined)
}
