// Package document reads the upstream file list: a JSON array of named,
// base64-encoded files. Comments and trailing commas are tolerated.
package document

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/bft-labs/qrship/internal/domain"
)

// Entry is one element of the upstream document.
type Entry struct {
	Name        string  `json:"name"`
	Base64      string  `json:"base64"`
	Description *string `json:"description,omitempty"`
}

// Parse decodes the document text into entries. Blank text or a JSON null
// means the document carries no file list.
func Parse(text []byte) ([]Entry, error) {
	src := jsonc.ToJSON(text)
	trimmed := bytes.TrimSpace(src)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, domain.ErrNoFiles
	}
	var entries []Entry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", domain.ErrDecode, err)
	}
	return entries, nil
}

// Read parses a document from r.
func Read(r io.Reader) ([]Entry, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(b)
}

// SourceFile decodes the entry payload.
func (e Entry) SourceFile() (domain.SourceFile, error) {
	raw, err := base64.StdEncoding.DecodeString(e.Base64)
	if err != nil {
		return domain.SourceFile{}, &domain.FileError{
			File:  e.Name,
			Stage: domain.StageDecode,
			Err:   fmt.Errorf("%w: base64: %v", domain.ErrDecode, err),
		}
	}
	f := domain.SourceFile{Name: e.Name, Raw: raw}
	if e.Description != nil {
		f.Description = *e.Description
	}
	return f, nil
}

// SourceFiles decodes every entry, stopping at the first failure.
func SourceFiles(entries []Entry) ([]domain.SourceFile, error) {
	files := make([]domain.SourceFile, 0, len(entries))
	for _, e := range entries {
		f, err := e.SourceFile()
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Load parses text and decodes every entry.
func Load(text []byte) ([]domain.SourceFile, error) {
	entries, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return SourceFiles(entries)
}
