package hdrstack

import "errors"

// Every error below aborts the whole series: there is no per-frame
// recovery. Callers classify failures with errors.Is.
var (
	ErrFileAccess           = errors.New("file missing or unreadable")
	ErrMetadataMissing      = errors.New("required metadata field missing")
	ErrInconsistentSettings = errors.New("capture settings differ between frames")
	ErrDuplicateExposure    = errors.New("duplicate exposure time")
	ErrDecode               = errors.New("unable to decode RAW file")
	ErrUnsupportedFormat    = errors.New("unsupported RAW format")
)
