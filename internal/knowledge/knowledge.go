// Package knowledge loads and serves the static knowledge base that grounds
// the assistant's replies.
//
// The knowledge base is a UTF-8 JSON file containing an array of
// {Context, Response} pairs. It is read-only at request time; the Store
// caches the parsed entries and invalidates the cache when the backing file
// changes on disk.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	// ErrNotFound indicates the knowledge base file does not exist.
	ErrNotFound = errors.New("knowledge base file not found")

	// ErrFormat indicates the knowledge base content is malformed.
	ErrFormat = errors.New("invalid knowledge base format")
)

// Entry is a single knowledge base record. Field order matters when the
// entries are serialized back into the model prompt: Context first, then
// Response.
type Entry struct {
	Context  string `json:"Context"`
	Response string `json:"Response"`
}

// rawEntry distinguishes a missing field from an empty one during
// validation. json.Unmarshal leaves absent fields nil.
type rawEntry struct {
	Context  *string `json:"Context"`
	Response *string `json:"Response"`
}

// Load reads and validates the knowledge base file at path.
//
// Returns ErrNotFound when the file is absent and ErrFormat when the content
// is not a JSON array or any element lacks the Context or Response field.
// The failing element is reported by index. An empty array is valid.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading knowledge base %s: %w", path, err)
	}

	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of {Context, Response} objects: %v", ErrFormat, err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, r := range raw {
		if r.Context == nil {
			return nil, fmt.Errorf("%w: element %d is missing %q", ErrFormat, i, "Context")
		}
		if r.Response == nil {
			return nil, fmt.Errorf("%w: element %d is missing %q", ErrFormat, i, "Response")
		}
		entries = append(entries, Entry{Context: *r.Context, Response: *r.Response})
	}

	return entries, nil
}
