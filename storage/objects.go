package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ReadBytes downloads the whole object at path.
func ReadBytes(ctx context.Context, s Storage, path string) ([]byte, error) {
	rc, err := s.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // read-only

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// WriteBytes uploads data to path.
func WriteBytes(ctx context.Context, s Storage, path string, data []byte) error {
	return s.Upload(ctx, path, bytes.NewReader(data))
}

// WriteJSON uploads v as indented JSON with non-ASCII text kept readable.
func WriteJSON(ctx context.Context, s Storage, path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("storage: encode %s: %w", path, err)
	}
	return s.Upload(ctx, path, &buf)
}

// ReadJSON downloads path and decodes it into v.
func ReadJSON(ctx context.Context, s Storage, path string, v any) error {
	data, err := ReadBytes(ctx, s, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", path, err)
	}
	return nil
}
