package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a query file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"

	// FormatJSON is the encoding of queries kept in run history. Query
	// files on disk are never JSON, so FormatOf does not return it.
	FormatJSON Format = "json"
)

// FormatOf picks the decoder for path by its extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	default:
		return "", false
	}
}

// Load reads and decodes a query file. Relative SQL database paths are
// resolved against the directory holding the file. The query is not
// validated; call Validate on the result.
func Load(path string) (*Query, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("unsupported query file extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}

	q, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	q.Path = path
	resolvePaths(q, filepath.Dir(path))
	return q, nil
}

// Parse decodes a query from data. filename is used only in CUE error
// positions and may be empty.
func Parse(data []byte, format Format, filename string) (*Query, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatCUE:
		return parseCUE(data, filename)
	case FormatJSON:
		return decodeJSON(data)
	default:
		return nil, fmt.Errorf("unknown query format %q", format)
	}
}

func parseYAML(data []byte) (*Query, error) {
	var q Query
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&q); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &q, nil
}

// parseCUE evaluates the file as a single concrete CUE value and decodes
// its JSON export into the same struct the YAML path uses.
func parseCUE(data []byte, filename string) (*Query, error) {
	if filename == "" {
		filename = "query.cue"
	}

	v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE query is not concrete: %w", err)
	}

	exported, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export CUE: %w", err)
	}

	q, err := decodeJSON(exported)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CUE query: %w", err)
	}
	return q, nil
}

func decodeJSON(data []byte) (*Query, error) {
	var q Query
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // keep integers distinct from floats
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&q); err != nil {
		return nil, fmt.Errorf("failed to decode JSON query: %w", err)
	}
	return &q, nil
}

func resolvePaths(q *Query, base string) {
	for i := range q.From {
		sql := q.From[i].SQL
		if sql == nil || sql.DB == "" {
			continue
		}
		if sql.DB == ":memory:" || strings.HasPrefix(sql.DB, "file:") || filepath.IsAbs(sql.DB) {
			continue
		}
		sql.DB = filepath.Join(base, sql.DB)
	}
}

// LoadDir loads every query file under dir in lexical order. When filter
// is non-empty only files whose base name (without extension) matches the
// glob are loaded.
func LoadDir(dir, filter string) ([]*Query, error) {
	files, err := FindFiles(dir, filter)
	if err != nil {
		return nil, err
	}

	queries := make([]*Query, 0, len(files))
	for _, f := range files {
		q, err := Load(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// FindFiles lists the query files under dir, applying the same filter as
// LoadDir.
func FindFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := FormatOf(path); !ok {
			return nil
		}

		if filter != "" {
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			matched, _ := filepath.Match(filter, name)
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
