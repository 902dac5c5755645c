// Package store persists the hub's documents as JSON files: one file per
// chat, one global graph, one config document. Disk shape and wire shape
// are the same JSON.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "graphchat/backend/pkg/errors"
)

// ReadJSON decodes the document at path into v. A missing file keeps its
// original not-exist error (callers check os.IsNotExist); an unreadable
// or malformed file is reported as CorruptState so callers can log the
// failure class before falling back to a default.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return apperrors.CorruptState(path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.CorruptState(path, err)
	}
	return nil
}

// WriteJSON overwrites the document at path atomically (temp file in the
// same directory, then rename). Output is 2-space indented with non-ASCII
// left unescaped.
func WriteJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
