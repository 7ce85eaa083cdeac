package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/franz/music-catalog/internal/util"
)

// Load reads a comma-delimited file, trying each encoding in order. The
// first encoding that decodes the whole file and parses as CSV wins.
func Load(path string, encodings []Encoding) (*Table, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", util.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", util.ErrNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var attempts []string
	for _, enc := range encodings {
		text, err := enc.Decode(data)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", enc.Name, err))
			continue
		}

		t, err := Parse(strings.NewReader(text))
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", enc.Name, err))
			continue
		}

		t.Encoding = enc.Name
		t.Source = path
		return t, nil
	}

	return nil, fmt.Errorf("%w: %s (%s)", util.ErrUnreadableFormat, path, strings.Join(attempts, "; "))
}

// Parse reads CSV text with a header row. Short rows are padded; rows wider
// than the header are rejected.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Titles like `12" Version` carry a bare quote mid-field
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(row))
		}
		rows = append(rows, row)
	}

	return NewTable(header, rows), nil
}
