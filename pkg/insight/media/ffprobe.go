package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFProbe probes media files by invoking the ffprobe binary with JSON
// output. It is safe on non-media files: ffprobe exits non-zero or emits
// no streams, and Probe returns an error either way.
type FFProbe struct {
	// Binary is the ffprobe executable name or path.
	Binary string
}

// NewFFProbe creates an FFProbe using the "ffprobe" binary from PATH.
func NewFFProbe() *FFProbe {
	return &FFProbe{Binary: "ffprobe"}
}

// ffprobeDoc mirrors the subset of ffprobe's JSON output we consume.
type ffprobeDoc struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe on the given path and normalizes its output.
func (f *FFProbe) Probe(ctx context.Context, path string) (ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.Binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path)

	out, err := cmd.Output()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var doc ffprobeDoc
	if err := json.Unmarshal(out, &doc); err != nil {
		return ProbeResult{}, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}

	var res ProbeResult

	if doc.Format.Duration != "" {
		if d, err := strconv.ParseFloat(doc.Format.Duration, 64); err == nil && d >= 0 {
			res.Duration = &d
		}
	}

	for _, s := range doc.Streams {
		switch s.CodecType {
		case "video":
			if res.VideoCodec == "" {
				res.VideoCodec = s.CodecName
				res.Width = s.Width
				res.Height = s.Height
				res.FPS = parseFrameRate(s.AvgFrameRate)
				if res.FPS == 0 {
					res.FPS = parseFrameRate(s.RFrameRate)
				}
			}
		case "audio":
			if res.AudioCodec == "" {
				res.AudioCodec = s.CodecName
			}
		}
	}

	if res.Duration == nil && res.VideoCodec == "" {
		return ProbeResult{}, fmt.Errorf("no media metadata in %s", path)
	}

	return res, nil
}

// parseFrameRate parses ffprobe's "num/den" rational frame rate.
// Returns 0 when the rate is missing, malformed, or non-positive.
func parseFrameRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}

	num, den, found := strings.Cut(rate, "/")
	if !found {
		if v, err := strconv.ParseFloat(rate, 64); err == nil && v > 0 {
			return v
		}
		return 0
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}

	fps := n / d
	if fps <= 0 {
		return 0
	}
	return fps
}
