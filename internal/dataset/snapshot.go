package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/franz/music-catalog/internal/util"
)

// WriteSnapshot writes t as UTF-8 CSV with a byte-order mark and a header
// row. With atomic set the previous snapshot is replaced only once the new
// one is fully written.
func WriteSnapshot(path string, t *Table, atomic bool) error {
	write := func(w io.Writer) error {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Header); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
		return cw.Error()
	}

	var err error
	if atomic {
		err = util.WriteFileAtomic(path, 0644, write)
	} else {
		err = util.WriteFileDirect(path, 0644, write)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", util.ErrWriteFailure, path, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by WriteSnapshot and recomputes the
// year column from the release dates.
func LoadSnapshot(path string) (*Table, error) {
	t, err := Load(path, []Encoding{UTF8})
	if err != nil {
		return nil, err
	}
	t.NormalizeReleaseDates()
	return t, nil
}
