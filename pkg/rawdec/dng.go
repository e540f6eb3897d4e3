package rawdec

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// DNG raws are TIFF containers: a header, then a chain of image file
// directories (IFDs) of 12-byte entries. The sensor mosaic lives either
// in IFD0 or in a SubIFD whose photometric interpretation is CFA. Only
// uncompressed 16-bit CFA strips are handled; everything else the DNG
// spec allows is rejected, not worked around.

const (
	leHeader = "II\x2A\x00" // little-endian TIFF header
	beHeader = "MM\x00\x2A" // big-endian TIFF header

	ifdLen = 12 // length of one IFD entry in bytes
)

// IFD entry data types.
const (
	dtByte     = 1
	dtASCII    = 2
	dtShort    = 3
	dtLong     = 4
	dtRational = 5
)

// sizes of one instance of each data type, indexed by type.
var dtSizes = [...]int{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Tags consumed here (TIFF 6.0 and the DNG extension set).
const (
	tImageWidth      = 256
	tImageLength     = 257
	tBitsPerSample   = 258
	tCompression     = 259
	tPhotometric     = 262
	tMake            = 271
	tModel           = 272
	tStripOffsets    = 273
	tStripByteCounts = 279
	tSubIFDs         = 330
	tBlackLevel      = 50714
	tWhiteLevel      = 50717
)

const (
	cNone = 1     // Compression: uncompressed
	pCFA  = 32803 // PhotometricInterpretation: color filter array
)

type dngDecoder struct{}

// dngFile is the parse state for one container.
type dngFile struct {
	bo   binary.ByteOrder
	data []byte
}

func (dngDecoder) Recognize(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	magic := string(data[:4])
	return magic == leHeader || magic == beHeader
}

func (dngDecoder) Decode(data []byte, table *Table) (*Image, error) {
	f := &dngFile{data: data}
	switch string(data[:4]) {
	case leHeader:
		f.bo = binary.LittleEndian
	case beHeader:
		f.bo = binary.BigEndian
	default:
		return nil, ErrUnknownFormat
	}

	ifd0, err := f.parseIFD(f.bo.Uint32(data[4:8]))
	if err != nil {
		return nil, err
	}

	raw, err := f.rawIFD(ifd0)
	if err != nil {
		return nil, err
	}

	width, okW := f.uintVal(raw, tImageWidth)
	height, okH := f.uintVal(raw, tImageLength)
	if !okW || !okH || width == 0 || height == 0 {
		return nil, fmt.Errorf("missing image dimensions: %w", ErrUnsupported)
	}

	if c, ok := f.uintVal(raw, tCompression); ok && c != cNone {
		return nil, fmt.Errorf("compressed raw data (scheme %d): %w", c, ErrUnsupported)
	}

	img := &Image{
		Width:        int(width),
		Height:       int(height),
		Pitch:        int(width),
		SubsamplingX: 1,
		SubsamplingY: 1,
		Make:         f.strVal(ifd0, tMake),
		Model:        f.strVal(ifd0, tModel),
	}

	if p, ok := f.uintVal(raw, tPhotometric); ok && p == pCFA {
		img.CFA = true
	}

	bits, _ := f.uintVal(raw, tBitsPerSample)
	switch bits {
	case 16:
		img.SampleType = SampleUint16
	case 8:
		img.SampleType = SampleUint8
	default:
		return nil, fmt.Errorf("%d bits per sample: %w", bits, ErrUnsupported)
	}

	if err := f.calibrate(img, raw, table); err != nil {
		return nil, err
	}

	if img.SampleType == SampleUint16 {
		if err := f.readStrips(img, raw); err != nil {
			return nil, err
		}
	}

	return img, nil
}

// rawIFD picks the directory holding the sensor mosaic: IFD0 when it is
// CFA itself, otherwise the first CFA SubIFD, otherwise IFD0 (whose
// missing CFA flag the caller rejects).
func (f *dngFile) rawIFD(ifd0 map[uint16]ifdEntry) (map[uint16]ifdEntry, error) {
	if p, ok := f.uintVal(ifd0, tPhotometric); ok && p == pCFA {
		return ifd0, nil
	}
	for _, off := range f.uintVals(ifd0, tSubIFDs) {
		sub, err := f.parseIFD(off)
		if err != nil {
			return nil, err
		}
		if p, ok := f.uintVal(sub, tPhotometric); ok && p == pCFA {
			return sub, nil
		}
	}
	return ifd0, nil
}

// calibrate fills in black level and white point from the container,
// then applies table overrides. A camera that supplies no white point
// and has no table entry is unknown, which is fatal.
func (f *dngFile) calibrate(img *Image, raw map[uint16]ifdEntry, table *Table) error {
	if v, ok := f.uintVal(raw, tBlackLevel); ok {
		img.BlackLevel = int(v)
	}
	if v, ok := f.uintVal(raw, tWhiteLevel); ok {
		img.WhitePoint = int(v)
	}

	cam, known := table.Lookup(img.Make, img.Model)
	if known {
		if cam.BlackLevel != 0 {
			img.BlackLevel = cam.BlackLevel
		}
		if cam.WhitePoint != 0 {
			img.WhitePoint = cam.WhitePoint
		}
	}

	if img.WhitePoint == 0 {
		if !known {
			return fmt.Errorf("%s %s: no calibration data: %w", img.Make, img.Model, ErrUnknownCamera)
		}
		return fmt.Errorf("%s %s: calibration entry lacks a white point: %w", img.Make, img.Model, ErrUnsupported)
	}
	if img.WhitePoint <= img.BlackLevel {
		return fmt.Errorf("white point %d not above black level %d: %w",
			img.WhitePoint, img.BlackLevel, ErrUnsupported)
	}
	return nil
}

// readStrips concatenates the image strips into img.Data.
func (f *dngFile) readStrips(img *Image, raw map[uint16]ifdEntry) error {
	offsets := f.uintVals(raw, tStripOffsets)
	counts := f.uintVals(raw, tStripByteCounts)
	if len(offsets) == 0 || len(offsets) != len(counts) {
		return fmt.Errorf("malformed strip layout: %w", ErrUnsupported)
	}

	pix := make([]uint16, img.Width*img.Height)
	base := 0
	for si, off := range offsets {
		end := int(off) + int(counts[si])
		if int(off) > len(f.data) || end > len(f.data) {
			return fmt.Errorf("strip %d out of bounds: %w", si, ErrUnsupported)
		}
		strip := f.data[off:end]
		n := len(strip) / 2
		if base+n > len(pix) {
			n = len(pix) - base
		}
		for i := 0; i < n; i++ {
			pix[base+i] = f.bo.Uint16(strip[2*i:])
		}
		base += n
	}
	if base < len(pix) {
		return fmt.Errorf("truncated image data (%d of %d samples): %w", base, len(pix), ErrUnsupported)
	}

	img.Data = pix
	return nil
}

type ifdEntry struct {
	typ   uint16
	count uint32
	raw   []byte
}

// parseIFD reads one directory into a tag-indexed map. Entry values are
// resolved here, whether inline or pointed-to.
func (f *dngFile) parseIFD(off uint32) (map[uint16]ifdEntry, error) {
	if int(off)+2 > len(f.data) {
		return nil, fmt.Errorf("IFD offset %d out of bounds: %w", off, ErrUnsupported)
	}
	n := int(f.bo.Uint16(f.data[off:]))
	base := int(off) + 2
	if base+n*ifdLen > len(f.data) {
		return nil, fmt.Errorf("truncated IFD at offset %d: %w", off, ErrUnsupported)
	}

	ifd := make(map[uint16]ifdEntry, n)
	for i := 0; i < n; i++ {
		e := f.data[base+i*ifdLen:]
		tag := f.bo.Uint16(e)
		typ := f.bo.Uint16(e[2:])
		count := f.bo.Uint32(e[4:])

		if int(typ) >= len(dtSizes) || dtSizes[typ] == 0 {
			continue // unknown type, skip
		}
		size := int(count) * dtSizes[typ]

		var val []byte
		if size <= 4 {
			val = e[8 : 8+size]
		} else {
			voff := int(f.bo.Uint32(e[8:]))
			if voff+size > len(f.data) {
				return nil, fmt.Errorf("tag %d value out of bounds: %w", tag, ErrUnsupported)
			}
			val = f.data[voff : voff+size]
		}
		ifd[tag] = ifdEntry{typ: typ, count: count, raw: val}
	}
	return ifd, nil
}

// uintVals renders a tag's values as unsigned integers. Rationals are
// truncated; DNG stores BlackLevel as a rational.
func (f *dngFile) uintVals(ifd map[uint16]ifdEntry, tag uint16) []uint32 {
	e, ok := ifd[tag]
	if !ok {
		return nil
	}
	out := make([]uint32, 0, e.count)
	for i := 0; i < int(e.count); i++ {
		switch e.typ {
		case dtByte:
			out = append(out, uint32(e.raw[i]))
		case dtShort:
			out = append(out, uint32(f.bo.Uint16(e.raw[2*i:])))
		case dtLong:
			out = append(out, f.bo.Uint32(e.raw[4*i:]))
		case dtRational:
			num := f.bo.Uint32(e.raw[8*i:])
			den := f.bo.Uint32(e.raw[8*i+4:])
			if den != 0 {
				out = append(out, num/den)
			}
		default:
			return nil
		}
	}
	return out
}

func (f *dngFile) uintVal(ifd map[uint16]ifdEntry, tag uint16) (uint32, bool) {
	vs := f.uintVals(ifd, tag)
	if len(vs) == 0 {
		return 0, false
	}
	return vs[0], true
}

func (f *dngFile) strVal(ifd map[uint16]ifdEntry, tag uint16) string {
	e, ok := ifd[tag]
	if !ok || e.typ != dtASCII {
		return ""
	}
	return strings.TrimRight(string(e.raw), "\x00 ")
}
