package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
)

// ffprobeResult captures the subset of ffprobe's JSON output the toolkit
// consumes.
type ffprobeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// MediaInfo summarizes what ffprobe reported for a media file.
type MediaInfo struct {
	// DurationSeconds is the container duration, 0 when unknown.
	DurationSeconds float64
	// Width and Height describe the first video stream, 0 when none.
	Width  int
	Height int
}

// Dimensions formats the video dimensions as "WxH", empty when unknown.
func (m MediaInfo) Dimensions() string {
	if m.Width <= 0 || m.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// InspectMedia runs ffprobe against path and decodes its JSON report. A
// missing path is absent; a failing or missing ffprobe binary is an error
// the caller may downgrade.
func InspectMedia(ctx context.Context, binary, path string) (MediaInfo, bool, error) {
	if _, err := os.Stat(path); err != nil {
		return MediaInfo{}, false, nil
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return MediaInfo{}, false, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return MediaInfo{}, false, fmt.Errorf("ffprobe parse %s: %w", path, err)
	}

	info := MediaInfo{}
	if seconds, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil && seconds > 0 {
		info.DurationSeconds = seconds
	}
	for _, stream := range result.Streams {
		if strings.EqualFold(stream.CodecType, "video") && stream.Width > 0 {
			info.Width = stream.Width
			info.Height = stream.Height
			break
		}
	}
	return info, true, nil
}

// ImageDimensions decodes just the image header and returns "WxH". Absent
// when the path does not exist or is not a decodable image.
func ImageDimensions(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), true
}

// DetectMIME sniffs the file's MIME type from its content. Absent when the
// path does not exist.
func DetectMIME(path string) (string, bool) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", false
	}
	return mtype.String(), true
}
