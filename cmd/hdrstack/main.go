// hdrstack loads a bracketed exposure series, validates it and reports
// the normalized result, ready for HDR merging.
//
//	hdrstack img_%d.dng
//	hdrstack --calibration cameras.toml /photos/bracket/
//	hdrstack a.dng b.dng c.dng
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/aknutsen/hdrstack/pkg/hdrstack"
	"github.com/aknutsen/hdrstack/pkg/rawdec"
)

var (
	calibration = flag.String("calibration", "", "path to a camera calibration TOML file")
	preview     = flag.String("preview", "", "directory to write grayscale previews of the normalized exposures")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hdrstack [flags] <pattern | directory | files...>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	series := hdrstack.NewSeries()
	if err := discover(series, flag.Args()); err != nil {
		klog.Exitf("discovery failed: %v", err)
	}

	src, err := hdrstack.NewExifSource()
	if err != nil {
		klog.Exitf("exiftool failed: %v", err)
	}
	defer src.Close()

	if err := series.Check(src); err != nil {
		klog.Exitf("series check failed: %v", err)
	}

	// The calibration table is loaded once, here, and handed to the
	// pipeline by reference. It is read-only from now on.
	var table *rawdec.Table
	if *calibration != "" {
		table, err = rawdec.LoadTable(*calibration)
		if err != nil {
			klog.Exitf("calibration failed: %v", err)
		}
	}

	if err := series.Load(table, nil); err != nil {
		klog.Exitf("load failed: %v", err)
	}

	series.EstimateSaturation()

	if *preview != "" {
		if err := series.WritePreviews(*preview); err != nil {
			klog.Exitf("preview failed: %v", err)
		}
	}
}

// discover routes the positional arguments to the right locator: one
// directory scans it, one non-directory is a filename pattern, several
// arguments are an explicit file list.
func discover(series *hdrstack.Series, args []string) error {
	if len(args) > 1 {
		return series.AddFiles(args...)
	}

	if fi, err := os.Stat(args[0]); err == nil && fi.IsDir() {
		return series.ScanDir(args[0])
	}

	series.Add(args[0])
	return nil
}
