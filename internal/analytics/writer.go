package analytics

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/franz/music-catalog/internal/util"
)

// Write stores ds as indented JSON under dir and returns the file path
func Write(dir string, ds *Dataset) (string, error) {
	path := filepath.Join(dir, ds.FileName())
	err := util.WriteFileAtomic(path, 0644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ds)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", util.ErrWriteFailure, path, err)
	}
	return path, nil
}
