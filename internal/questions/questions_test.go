package questions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	raw := []byte("Capital of France?|Paris\n\n# comment\nno separator here\nScience|easy|H2O is?|Water\nPipes?|a|b\n |blank question\n")

	qs := ParseText(raw)
	require.Len(t, qs, 3)

	assert.Equal(t, Question{ID: "1", Text: "Capital of France?", Answer: "Paris"}, qs[0])
	assert.Equal(t, "Science", qs[1].Category)
	assert.Equal(t, "easy", qs[1].Difficulty)
	assert.Equal(t, "Water", qs[1].Answer)
	assert.Equal(t, "a|b", qs[2].Answer)
}

func TestParseJSON_DropsBlankAndAcceptsAliases(t *testing.T) {
	raw := []byte(`[
		{"id": 7, "category": "Geo", "difficulty": 2, "question": "Longest river?", "answer": "Nile"},
		{"q": "Short form?", "a": "Yes"},
		{"question": "No answer", "answer": "  "},
		{"question": "", "answer": "orphan"}
	]`)

	qs, err := ParseJSON(raw)
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, "7", qs[0].ID)
	assert.Equal(t, "2", qs[0].Difficulty)
	assert.Equal(t, "Short form?", qs[1].Text)
	assert.Equal(t, "2", qs[1].ID)
}

func TestParseJSONLines_SkipsBadLines(t *testing.T) {
	raw := []byte("{\"q\":\"One?\",\"a\":\"1\"}\nnot json\n\n{\"question\":\"Two?\",\"answer\":2}\n")

	qs := ParseJSONLines(raw)
	require.Len(t, qs, 2)
	assert.Equal(t, "2", qs[1].Answer)
}

func TestParseYAML(t *testing.T) {
	raw := []byte("- id: a1\n  category: Music\n  question: Who wrote Yesterday?\n  answer: McCartney\n- question: Missing answer\n")

	qs, err := ParseYAML(raw)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "a1", qs[0].ID)
	assert.Equal(t, "Music", qs[0].Category)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	qs, err := Load(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, qs)

	p := filepath.Join(dir, "bank.txt")
	require.NoError(t, os.WriteFile(p, []byte("A?|a\nB?|b\n"), 0o644))
	qs, err = Load(p)
	require.NoError(t, err)
	assert.Len(t, qs, 2)

	bad := filepath.Join(dir, "bank.csv")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	_, err = Load(bad)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
