package hdrstack

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"k8s.io/klog/v2"
)

// Check reads every frame's capture metadata, aggregates it, enforces
// the cross-frame invariants (same ISO, same aperture, no duplicate
// exposure times) and sorts the series by ascending exposure time. Any
// violation fails the whole series. Frames not taken in manual exposure
// or manual focus mode only draw a warning.
func (s *Series) Check(src MetadataSource) error {
	if len(s.Exposures) == 0 {
		return fmt.Errorf("no exposures found: %w", ErrFileAccess)
	}

	for i, exp := range s.Exposures {
		fm, err := src.Open(exp.Filename)
		if err != nil {
			return fmt.Errorf("%q: could not open RAW file (%v): %w", exp.Filename, err, ErrDecode)
		}

		s.mergeMetadata(fm.Fields())

		apex, err := fm.ShutterAPEX()
		if err != nil {
			return fmt.Errorf("%q: could not extract the exposure time: %w", exp.Filename, ErrMetadataMissing)
		}
		exp.ExposureTime = math.Pow(2, -apex)

		shown, err := fm.ExposureTime()
		if err != nil {
			return fmt.Errorf("%q: could not extract the exposure time: %w", exp.Filename, ErrMetadataMissing)
		}
		exp.DisplayedExposureTime = shown

		iso, err := fm.ISO()
		if err != nil {
			return fmt.Errorf("%q: could not extract the ISO speed: %w", exp.Filename, ErrMetadataMissing)
		}
		if i == 0 {
			s.ISO = iso
		} else if s.ISO != iso {
			return fmt.Errorf("%q: ISO speed %g differs from the other images (%g): %w",
				exp.Filename, iso, s.ISO, ErrInconsistentSettings)
		}

		fnum, err := fm.FNumber()
		if err != nil {
			return fmt.Errorf("%q: could not extract the aperture setting: %w", exp.Filename, ErrMetadataMissing)
		}
		if i == 0 {
			s.Aperture = fnum
		} else if s.Aperture != fnum {
			return fmt.Errorf("%q: aperture f/%g differs from the other images (f/%g): %w",
				exp.Filename, fnum, s.Aperture, ErrInconsistentSettings)
		}

		mode, err := fm.ExposureMode()
		if err != nil {
			return fmt.Errorf("%q: could not extract the exposure mode: %w", exp.Filename, ErrMetadataMissing)
		}
		if mode != "Manual" {
			klog.Warningf("image %q was *not* taken in manual exposure mode", exp.Filename)
		}

		if focus, ok := fm.FocusMode(); ok && focus != "Manual focus" {
			klog.Warningf("image %q was *not* taken in manual focus mode", exp.Filename)
		}
	}

	sort.SliceStable(s.Exposures, func(i, j int) bool {
		return s.Exposures[i].ExposureTime < s.Exposures[j].ExposureTime
	})

	klog.Infof("found %d %s [ISO %g, %s, exposures: %s]",
		len(s.Exposures), plural(len(s.Exposures), "image"), s.ISO, s.fstop(), s.exposureList())

	for i := 1; i < len(s.Exposures); i++ {
		if s.Exposures[i].ExposureTime == s.Exposures[i-1].ExposureTime {
			return fmt.Errorf("duplicate exposure time %s: %w", s.Exposures[i], ErrDuplicateExposure)
		}
	}

	klog.Infof("collected %d metadata entries", len(s.Metadata))
	return nil
}

func (s *Series) fstop() string {
	if s.Aperture == 0 {
		return "f/unknown"
	}
	return fmt.Sprintf("f/%g", s.Aperture)
}

func (s *Series) exposureList() string {
	parts := make([]string, 0, len(s.Exposures))
	for _, exp := range s.Exposures {
		parts = append(parts, exp.String())
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
