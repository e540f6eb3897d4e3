package hdrstack

import (
	"k8s.io/klog/v2"
)

// EstimateSaturation computes the sensor saturation threshold: the
// value below which 99.9% of the longest exposure's pixels fall. The
// longest exposure is the last after sorting and is the frame most
// likely to contain blown highlights. The frame's buffer is copied, not
// mutated.
func (s *Series) EstimateSaturation() float32 {
	if len(s.Exposures) == 0 {
		return 0
	}

	last := s.Exposures[len(s.Exposures)-1]
	if len(last.Image) == 0 {
		return 0
	}

	tmp := make([]float32, len(last.Image))
	copy(tmp, last.Image)

	percentile := int(float64(len(tmp)) * 0.999)
	s.Saturation = selectKth(tmp, percentile)

	klog.Infof("saturation detected to be around %g", s.Saturation)
	return s.Saturation
}

// selectKth partially orders buf so that the element a full ascending
// sort would place at index k ends up there, and returns it. Linear
// expected time; buf is scrambled.
func selectKth(buf []float32, k int) float32 {
	lo, hi := 0, len(buf)-1
	for lo < hi {
		p := partition(buf, lo, hi)
		switch {
		case p == k:
			return buf[k]
		case p < k:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
	return buf[k]
}

// partition picks a median-of-three pivot and splits buf[lo:hi+1]
// around it, returning the pivot's final index.
func partition(buf []float32, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if buf[mid] < buf[lo] {
		buf[mid], buf[lo] = buf[lo], buf[mid]
	}
	if buf[hi] < buf[lo] {
		buf[hi], buf[lo] = buf[lo], buf[hi]
	}
	if buf[hi] < buf[mid] {
		buf[hi], buf[mid] = buf[mid], buf[hi]
	}

	pivot := buf[mid]
	buf[mid], buf[hi] = buf[hi], buf[mid]

	i := lo
	for j := lo; j < hi; j++ {
		if buf[j] < pivot {
			buf[i], buf[j] = buf[j], buf[i]
			i++
		}
	}
	buf[i], buf[hi] = buf[hi], buf[i]
	return i
}
