package curate

import (
	"bytes"
	"fmt"
	"os"

	"jsoncollate/internal/atomicfile"
)

// WriteResult describes one write of the combined output.
type WriteResult struct {
	Path      string
	Records   int
	Bytes     int
	Unchanged bool // existing file already held identical bytes; nothing written
}

// WriteCombined encodes ds and writes it to path atomically. When path
// already holds exactly the encoded bytes the write is skipped.
func WriteCombined(path string, ds Dataset) (WriteResult, error) {
	data, err := EncodeCombined(ds)
	if err != nil {
		return WriteResult{}, err
	}
	res := WriteResult{Path: path, Records: ds.Len(), Bytes: len(data)}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		res.Unchanged = true
		return res, nil
	}
	if err := atomicfile.WriteBytes(path, data, 0o644); err != nil {
		return WriteResult{}, fmt.Errorf("curate: write combined %q: %w", path, err)
	}
	return res, nil
}
