package hdrstack

import (
	"fmt"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

// MetadataSource supplies per-frame capture metadata.
type MetadataSource interface {
	Open(path string) (FrameMeta, error)
}

// FrameMeta exposes one frame's capture metadata. Accessors return an
// error when the field is absent, which is distinct from a present but
// empty value.
type FrameMeta interface {
	// Fields returns every attribute rendered to a string.
	Fields() map[string]string
	// ShutterAPEX returns the base-2 logarithmic shutter speed value.
	ShutterAPEX() (float64, error)
	// ExposureTime returns the camera-reported exposure time in seconds.
	ExposureTime() (float64, error)
	ISO() (float64, error)
	FNumber() (float64, error)
	// ExposureMode returns the rendered exposure mode, e.g. "Manual".
	ExposureMode() (string, error)
	// FocusMode returns the rendered focus mode on cameras that report
	// one, and whether the attribute was present at all.
	FocusMode() (string, bool)
}

// ExifSource extracts frame metadata with exiftool. Two handles are
// kept: exiftool renders either every tag numerically or every tag
// human-readable, and the series needs both views (raw APEX/ISO/f-number
// values vs. rendered mode strings and the aggregate dictionary).
type ExifSource struct {
	num  *exiftool.Exiftool
	disp *exiftool.Exiftool
}

// NewExifSource starts the exiftool subprocesses.
func NewExifSource() (*ExifSource, error) {
	num, err := exiftool.NewExiftool(exiftool.NoPrintConversion())
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}

	disp, err := exiftool.NewExiftool()
	if err != nil {
		num.Close()
		return nil, fmt.Errorf("exiftool: %w", err)
	}

	return &ExifSource{num: num, disp: disp}, nil
}

// Close shuts down the exiftool subprocesses.
func (s *ExifSource) Close() {
	if err := s.num.Close(); err != nil {
		klog.Warningf("exiftool close: %v", err)
	}
	if err := s.disp.Close(); err != nil {
		klog.Warningf("exiftool close: %v", err)
	}
}

// Open extracts both metadata views for one file.
func (s *ExifSource) Open(path string) (FrameMeta, error) {
	num := s.num.ExtractMetadata(path)[0]
	if num.Err != nil {
		return nil, fmt.Errorf("extract fail for %q: %w", path, num.Err)
	}

	disp := s.disp.ExtractMetadata(path)[0]
	if disp.Err != nil {
		return nil, fmt.Errorf("extract fail for %q: %w", path, disp.Err)
	}

	for k, v := range disp.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	return &exifFrame{num: num, disp: disp}, nil
}

type exifFrame struct {
	num  exiftool.FileMetadata
	disp exiftool.FileMetadata
}

func (f *exifFrame) Fields() map[string]string {
	out := make(map[string]string, len(f.disp.Fields))
	for k, v := range f.disp.Fields {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

func (f *exifFrame) ShutterAPEX() (float64, error) {
	return f.num.GetFloat("ShutterSpeedValue")
}

func (f *exifFrame) ExposureTime() (float64, error) {
	return f.num.GetFloat("ExposureTime")
}

func (f *exifFrame) ISO() (float64, error) {
	return f.num.GetFloat("ISO")
}

func (f *exifFrame) FNumber() (float64, error) {
	return f.num.GetFloat("FNumber")
}

func (f *exifFrame) ExposureMode() (string, error) {
	return f.disp.GetString("ExposureMode")
}

func (f *exifFrame) FocusMode() (string, bool) {
	v, err := f.disp.GetString("FocusMode")
	if err != nil {
		return "", false
	}
	return v, true
}
