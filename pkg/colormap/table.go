package colormap

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tbruckner/warpviz/pkg/errors"
)

// Table is a serializable 2D color lookup table. Entries are ordered
// row-major by (I, J); Lookup gives keyed access.
type Table struct {
	Dim        int     `json:"dim"`
	Downsample int     `json:"downsample"`
	Bright     float64 `json:"bright"`
	Entries    []Entry `json:"entries"`
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.Entries)
}

// Lookup returns the color for grid coordinate (i, j).
func (t *Table) Lookup(i, j int) (RGB, bool) {
	side := t.Dim / t.Downsample
	row := i / t.Downsample
	col := j / t.Downsample
	if i%t.Downsample != 0 || j%t.Downsample != 0 || row < 0 || row >= side || col < 0 || col >= side {
		return RGB{}, false
	}
	return t.Entries[row*side+col].Color, true
}

// Key renders a grid coordinate as the serialization key used by external
// viewers ("i,j").
func Key(i, j int) string {
	return fmt.Sprintf("%d,%d", i, j)
}

// WriteFile serializes the table as indented JSON.
func (t *Table) WriteFile(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "marshal color table")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "write color table %s", path)
	}
	return nil
}

// ReadFile deserializes a table written by WriteFile. Malformed files fail
// immediately; there is no fallback table.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read color table %s", path)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "parse color table %s", path)
	}
	if t.Downsample <= 0 || t.Dim <= 0 {
		return nil, errors.New(errors.ErrCodeDecode, "color table %s has invalid geometry %d/%d", path, t.Dim, t.Downsample)
	}
	side := t.Dim / t.Downsample
	if len(t.Entries) != side*side {
		return nil, errors.New(errors.ErrCodeDecode,
			"color table %s has %d entries, want %d", path, len(t.Entries), side*side)
	}
	return &t, nil
}
