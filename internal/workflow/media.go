package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"odea/internal/archive"
	"odea/internal/catalog"
	"odea/internal/probe"
)

// probeMIME is a seam so tests can dispatch thumbnail generation without
// real media files.
var probeMIME = func(path string) (string, bool) {
	return probe.DetectMIME(path)
}

// probeMedia fills in dimensions and duration for image and audiovisual
// files. A missing or failing ffprobe downgrades to a debug message since
// these fields are informational.
func (w *Workflow) probeMedia(ctx context.Context, f *catalog.File) {
	abs := archive.Join(w.root, f.Filename)

	if dims, ok := probe.ImageDimensions(abs); ok {
		f.Dimensions = dims
		return
	}

	mime, ok := probeMIME(abs)
	if !ok || (!strings.HasPrefix(mime, "video/") && !strings.HasPrefix(mime, "audio/")) {
		return
	}
	info, ok, err := probe.InspectMedia(ctx, w.cfg.Probe.FFprobe, abs)
	if err != nil {
		w.logger.Debug("ffprobe failed", "path", f.Filename, "error", err)
		return
	}
	if !ok {
		return
	}
	if dims := info.Dimensions(); dims != "" {
		f.Dimensions = dims
	}
	if info.DurationSeconds > 0 {
		f.Duration = strconv.FormatFloat(info.DurationSeconds, 'f', -1, 64)
	}
}

// halfDuration returns the midpoint of a duration in seconds, for picking a
// representative video still. Unparsable durations fall back to the first
// frame.
func halfDuration(duration string) string {
	seconds, err := strconv.ParseFloat(duration, 64)
	if err != nil || seconds <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", seconds/2)
}
