// Package rawdec decodes raw camera container files into 16-bit sensor
// mosaic images plus the per-camera calibration constants (black level,
// white point) that downstream normalization needs.
package rawdec

import (
	"errors"
)

var (
	// ErrUnknownFormat means no registered decoder recognizes the file.
	ErrUnknownFormat = errors.New("no decoder recognizes this file")
	// ErrUnknownCamera means the file decoded but carries no usable
	// calibration and the calibration table has no entry for the
	// camera. Unknown cameras are fatal, never silently guessed.
	ErrUnknownCamera = errors.New("unknown camera")
	// ErrUnsupported means the decoder recognized the container but
	// cannot handle its contents.
	ErrUnsupported = errors.New("unsupported raw file")
)

// SampleType describes the encoding of one sensor sample.
type SampleType int

const (
	SampleUnknown SampleType = iota
	SampleUint8
	SampleUint16
)

// Image is one decoded sensor frame, before any demosaicing.
type Image struct {
	Width  int
	Height int

	// Pitch is the row stride of Data in samples. Pitch >= Width.
	Pitch int

	SampleType SampleType

	// SubsamplingX/Y are 1 for full-resolution sensor data.
	SubsamplingX int
	SubsamplingY int

	// CFA reports whether the sensor carries a color filter array.
	CFA bool

	BlackLevel int
	WhitePoint int

	Make  string
	Model string

	// Data holds the raw samples for SampleUint16 images. Other sample
	// types carry no data; callers reject them before reading samples.
	Data []uint16
}

// Decoder handles one raw container format.
type Decoder interface {
	// Recognize reports whether data looks like this decoder's format.
	Recognize(data []byte) bool
	// Decode parses data into an Image, consulting table for camera
	// calibration the container does not carry itself.
	Decode(data []byte, table *Table) (*Image, error)
}

var decoders = []Decoder{dngDecoder{}}

// Decode runs data through the registered decoders in order and decodes
// with the first one that recognizes it.
func Decode(data []byte, table *Table) (*Image, error) {
	for _, d := range decoders {
		if !d.Recognize(data) {
			continue
		}
		return d.Decode(data, table)
	}
	return nil, ErrUnknownFormat
}
