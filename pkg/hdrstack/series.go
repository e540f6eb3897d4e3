// Package hdrstack loads and validates bracketed exposure series for
// high-dynamic-range merging: it discovers the files of a bracket,
// checks that the frames are photographically consistent, decodes the
// raw sensor data into normalized linear images and estimates the
// sensor's saturation threshold.
package hdrstack

import (
	"fmt"
)

// Exposure is one captured frame of a bracketed series.
type Exposure struct {
	Filename string

	// ExposureTime is derived from the APEX shutter speed value as
	// 2^-apex. It orders the series and detects duplicates.
	ExposureTime float64

	// DisplayedExposureTime is the camera-reported exposure time. It may
	// differ slightly from the derived value and is only shown to users.
	DisplayedExposureTime float64

	Width  int
	Height int

	// Image holds Width*Height normalized samples in row-major order,
	// roughly in [0, 1] linear scale. Superexposed pixels may exceed 1.
	Image []float32
}

// String renders the exposure time the way photographers read it,
// preferring the camera-reported value over the APEX-derived one.
func (e *Exposure) String() string {
	t := e.DisplayedExposureTime
	if t == 0 {
		t = e.ExposureTime
	}
	if t > 0 && t < 1 {
		return fmt.Sprintf("1/%.4gs", 1/t)
	}
	return fmt.Sprintf("%.4gs", t)
}

// Series is one exposure bracket: the frames of a single static scene
// taken at different exposure times.
type Series struct {
	// Exposures is ascending by ExposureTime once Check has run.
	Exposures []*Exposure

	// Metadata maps attribute keys to aggregated values across frames.
	Metadata map[string]string

	ISO      float64
	Aperture float64

	Width  int
	Height int

	// Saturation is the normalized value above which a pixel is
	// considered to come from a saturated sensor well. Set by
	// EstimateSaturation.
	Saturation float32
}

// NewSeries returns an empty series ready for discovery.
func NewSeries() *Series {
	return &Series{Metadata: map[string]string{}}
}

// mergeMetadata folds one frame's rendered attributes into the series
// dictionary. Oversized values are rejected, identical values are
// deduplicated and differing values for the same key are concatenated.
func (s *Series) mergeMetadata(fields map[string]string) {
	for k, v := range fields {
		if len(v) > 100 {
			continue
		}
		cur, ok := s.Metadata[k]
		switch {
		case !ok:
			s.Metadata[k] = v
		case cur == v:
			// already recorded
		default:
			s.Metadata[k] = cur + "; " + v
		}
	}
}
