package questions

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported question file format")

type Question struct {
	ID         string `json:"id"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Text       string `json:"question"`
	Answer     string `json:"answer"`
}

// record is the loose on-disk shape. "q"/"a" are accepted as short aliases.
type record struct {
	ID         any    `json:"id" yaml:"id"`
	Category   string `json:"category" yaml:"category"`
	Difficulty any    `json:"difficulty" yaml:"difficulty"`
	Question   string `json:"question" yaml:"question"`
	Answer     any    `json:"answer" yaml:"answer"`
	Q          string `json:"q" yaml:"q"`
	A          any    `json:"a" yaml:"a"`
}

// Load reads a question bank, picking the parser from the file extension.
// A missing file is not an error; it yields an empty bank.
func Load(path string) ([]Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read questions %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(raw)
	case ".jsonl", ".ndjson":
		return ParseJSONLines(raw), nil
	case ".yaml", ".yml":
		return ParseYAML(raw)
	case ".txt", "":
		return ParseText(raw), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func ParseJSON(raw []byte) ([]Question, error) {
	var recs []record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("parse json questions: %w", err)
	}
	return fromRecords(recs), nil
}

// ParseJSONLines skips lines that fail to decode instead of failing the whole file.
func ParseJSONLines(raw []byte) []Question {
	var recs []record
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		recs = append(recs, r)
	}
	return fromRecords(recs)
}

func ParseYAML(raw []byte) ([]Question, error) {
	var recs []record
	if err := yaml.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("parse yaml questions: %w", err)
	}
	return fromRecords(recs), nil
}

// ParseText reads one question per line, either "question|answer" or
// "category|difficulty|question|answer". With two fields any further pipes
// belong to the answer.
func ParseText(raw []byte) []Question {
	var recs []record
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		switch {
		case len(parts) >= 4:
			recs = append(recs, record{
				Category:   parts[0],
				Difficulty: parts[1],
				Question:   parts[2],
				Answer:     strings.Join(parts[3:], "|"),
			})
		case len(parts) >= 2:
			recs = append(recs, record{Question: parts[0], Answer: strings.Join(parts[1:], "|")})
		}
	}
	return fromRecords(recs)
}

func fromRecords(recs []record) []Question {
	out := make([]Question, 0, len(recs))
	for _, r := range recs {
		q := Question{
			Category:   clean(r.Category),
			Difficulty: clean(scalar(r.Difficulty)),
			Text:       clean(r.Question),
			Answer:     clean(scalar(r.Answer)),
		}
		if q.Text == "" {
			q.Text = clean(r.Q)
		}
		if q.Answer == "" {
			q.Answer = clean(scalar(r.A))
		}
		if q.Text == "" || q.Answer == "" {
			continue
		}
		q.ID = clean(scalar(r.ID))
		if q.ID == "" {
			q.ID = strconv.Itoa(len(out) + 1)
		}
		out = append(out, q)
	}
	return out
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
