package rawdec

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Table is the per-camera calibration database. It is loaded once by
// the caller before decoding starts and is read-only afterwards, so it
// may be shared across workers without locking.
type Table struct {
	Cameras []Camera `toml:"camera"`
}

// Camera supplies calibration constants for one camera model. A zero
// black level or white point leaves the container-provided value alone.
type Camera struct {
	Make       string `toml:"make"`
	Model      string `toml:"model"`
	BlackLevel int    `toml:"black_level"`
	WhitePoint int    `toml:"white_point"`
}

// LoadTable parses a TOML calibration file:
//
//	[[camera]]
//	make = "Canon"
//	model = "Canon EOS 5D Mark II"
//	black_level = 1023
//	white_point = 15600
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration table: %w", err)
	}

	var t Table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse calibration table %q: %w", path, err)
	}
	return &t, nil
}

// Lookup finds the entry for a camera, matching make and model
// case-insensitively. A nil table has no entries.
func (t *Table) Lookup(mk, model string) (Camera, bool) {
	if t == nil {
		return Camera{}, false
	}
	for _, c := range t.Cameras {
		if strings.EqualFold(c.Make, mk) && strings.EqualFold(c.Model, model) {
			return c, true
		}
	}
	return Camera{}, false
}
