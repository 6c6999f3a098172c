// Package types provides core data types for the insight directory
// inventory tool. It includes the per-file record produced by a scan,
// the scan result envelope, and size formatting helpers.
package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
)

// videoExtensions is the fixed set of extensions treated as video files.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
	".3gp":  true,
}

// IsVideoExtension reports whether ext (lowercase, with leading dot)
// belongs to the known video extension set.
func IsVideoExtension(ext string) bool {
	return videoExtensions[ext]
}

// VideoMetadata holds metadata extracted from a video container.
// Fields other than Duration may be zero when the probe could not
// determine them or rejected them as out of range.
type VideoMetadata struct {
	// Duration is the playback length in seconds.
	Duration float64 `json:"duration"`

	// Width and Height are the frame dimensions in pixels.
	// Both are positive when present, zero when unknown.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// FPS is the frame rate. Positive when present, zero when unknown.
	FPS float64 `json:"fps,omitempty"`

	// VideoCodec and AudioCodec are codec names as reported by the probe.
	// An unknown codec is the empty string, never the literal "unknown".
	VideoCodec string `json:"video_codec,omitempty"`
	AudioCodec string `json:"audio_codec,omitempty"`
}

// HasResolution reports whether both frame dimensions are known.
func (v *VideoMetadata) HasResolution() bool {
	return v.Width > 0 && v.Height > 0
}

// Resolution returns the frame dimensions formatted as "WxH",
// or the empty string when the resolution is unknown.
func (v *VideoMetadata) Resolution() string {
	if !v.HasResolution() {
		return ""
	}
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// FileRecord contains the extracted metadata for a single scanned file.
// A record is built once per path and is not mutated after the scanner
// hands it to downstream consumers.
type FileRecord struct {
	// Path is the file path as enumerated by the walker.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Extension is the lowercase extension including the leading dot,
	// or the empty string for files without one.
	Extension string `json:"extension"`

	// Created is the file creation time. On platforms without true birth
	// time (notably Linux) this falls back to the modification time.
	Created time.Time `json:"created"`

	// Modified is the last modification time.
	Modified time.Time `json:"modified"`

	// Preview holds up to 1000 characters of file content for files
	// classified as text. Nil means no preview; a pointer to the empty
	// string means the file is an empty text file.
	Preview *string `json:"preview,omitempty"`

	// MIMEType is a best-effort guess from the extension, or "" if unknown.
	MIMEType string `json:"mime_type,omitempty"`

	// Video is populated only when the file is a video, enrichment was
	// enabled, and the probe succeeded.
	Video *VideoMetadata `json:"video,omitempty"`
}

// Name returns the final path component.
func (r *FileRecord) Name() string {
	return filepath.Base(r.Path)
}

// IsBinary reports whether the file appears to be binary. The verdict is
// a heuristic: a file with no MIME guess is treated as not binary.
func (r *FileRecord) IsBinary() bool {
	if r.MIMEType == "" {
		return false
	}
	return !strings.HasPrefix(r.MIMEType, "text/") &&
		!strings.HasPrefix(r.MIMEType, "application/json")
}

// IsVideo reports whether the file's extension is a known video extension.
func (r *FileRecord) IsVideo() bool {
	return IsVideoExtension(r.Extension)
}

// HasVideoMetadata reports whether the record carries probed video
// metadata. A metadata block without a duration never attaches, so the
// presence of Video implies the duration is known.
func (r *FileRecord) HasVideoMetadata() bool {
	return r.IsVideo() && r.Video != nil
}

// HumanSize returns the file size formatted as a human-readable string.
func (r *FileRecord) HumanSize() string {
	return FormatSize(r.Size)
}

// ScanError pairs a path with the error message encountered there.
// Errors local to one file never abort a scan; they are collected here.
type ScanError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScanResult contains everything a completed scan produced.
type ScanResult struct {
	// Records contains one entry per successfully inventoried file.
	// Ordering is not guaranteed beyond OS enumeration order.
	Records []FileRecord `json:"records"`

	// FilesScanned is the number of candidate files examined,
	// including ones that later failed to stat.
	FilesScanned int64 `json:"files_scanned"`

	// DirsScanned is the number of directories traversed.
	DirsScanned int64 `json:"dirs_scanned"`

	// SoftFailures lists per-file errors that were absorbed.
	SoftFailures []ScanError `json:"soft_failures,omitempty"`

	// Elapsed is the wall time the scan took.
	Elapsed time.Duration `json:"elapsed"`
}

// ScanProgress is a snapshot of scan state for progress callbacks.
type ScanProgress struct {
	DirsScanned  int64  `json:"dirs_scanned"`
	FilesScanned int64  `json:"files_scanned"`
	CurrentPath  string `json:"current_path"`
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
