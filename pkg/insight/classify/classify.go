// Package classify determines a MIME-ish type, a binary/text verdict, and
// a safe text preview for a single file. Classification is heuristic:
// extension tables decide the likely type, and a bounded content scan
// reclassifies files whose bytes do not look like text.
package classify

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jamesainslie/insight/pkg/insight/logging"
	"github.com/jamesainslie/insight/pkg/insight/types"
)

const (
	// PreviewMaxChars is the maximum preview length in characters.
	PreviewMaxChars = 1000

	// previewSizeCeiling is the file size above which no preview is read.
	previewSizeCeiling = 1 * types.MiB

	// previewReadBytes bounds the raw bytes read for a preview. Four bytes
	// per character covers the widest UTF-8 encoding of 1000 characters.
	previewReadBytes = 4 * PreviewMaxChars

	// nonPrintableThreshold is the fraction of non-printable characters
	// above which a file is reclassified as binary.
	nonPrintableThreshold = 0.10
)

// binaryExtensions lists extensions assumed binary without reading content:
// images, audio, video, archives, executables, and office documents.
var binaryExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".ico": true, ".svg": true,
	".mp3": true, ".wav": true,
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
}

// mimeTable maps extensions to MIME types ahead of the platform mime
// database, so classification does not vary with host configuration.
var mimeTable = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".py":   "text/x-python",
	".go":   "text/x-go",
	".c":    "text/x-c",
	".sh":   "application/x-sh",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".csv":  "text/csv",
	".js":   "text/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".pdf":  "application/pdf",
	".exe":  "application/x-msdownload",
}

// Result is the outcome of classifying one file.
type Result struct {
	// MIMEType is the best-effort guess from the extension, "" if unknown.
	MIMEType string

	// Binary is the final binary verdict, including content-based
	// reclassification.
	Binary bool

	// Preview holds up to PreviewMaxChars characters of content for text
	// files. Nil when no preview was taken; a pointer to "" for empty
	// text files.
	Preview *string
}

// Classifier determines file types and previews.
type Classifier struct {
	log *logging.Logger
}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{log: logging.Get("classify")}
}

// Classify inspects the file at path with the given size. Read failures
// are absorbed: the file is treated as having no preview and is not
// reclassified, and the error never propagates to the caller.
func (c *Classifier) Classify(path string, size int64) Result {
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := GuessMIME(ext)

	likelyBinary := binaryExtensions[ext] || (mimeType != "" && !textLike(mimeType))
	if likelyBinary {
		return Result{MIMEType: mimeType, Binary: true}
	}

	if size >= previewSizeCeiling {
		return Result{MIMEType: mimeType}
	}

	if size == 0 {
		// An empty file is text with an empty preview, not "no preview".
		empty := ""
		return Result{MIMEType: mimeType, Preview: &empty}
	}

	preview, ok := c.readPreview(path)
	if !ok {
		return Result{MIMEType: mimeType}
	}

	if looksBinary(preview) {
		return Result{MIMEType: mimeType, Binary: true}
	}

	return Result{MIMEType: mimeType, Preview: &preview}
}

// readPreview reads and decodes the first PreviewMaxChars characters.
// Invalid UTF-8 bytes are replaced rather than failing the decode.
func (c *Classifier) readPreview(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		c.log.Debug("preview read failed", "path", path, "error", err)
		return "", false
	}
	defer f.Close()

	buf := make([]byte, previewReadBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		c.log.Debug("preview read failed", "path", path, "error", err)
		return "", false
	}
	return decodePrefix(buf[:n]), true
}

// decodePrefix decodes up to PreviewMaxChars characters from b, replacing
// invalid UTF-8 sequences with the replacement character.
func decodePrefix(b []byte) string {
	var sb strings.Builder
	count := 0
	for i := 0; i < len(b) && count < PreviewMaxChars; {
		// Invalid bytes decode to the replacement character with size 1,
		// which is exactly the permissive fallback we want.
		r, size := utf8.DecodeRune(b[i:])
		sb.WriteRune(r)
		i += size
		count++
	}
	return sb.String()
}

// looksBinary scans a decoded prefix for binary markers: any NUL
// character, or more than nonPrintableThreshold of characters being
// non-printable (below ASCII 32, excluding newline, carriage return, tab).
func looksBinary(s string) bool {
	if s == "" {
		return false
	}
	total := 0
	nonPrintable := 0
	for _, r := range s {
		if r == 0 {
			return true
		}
		total++
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable) > nonPrintableThreshold*float64(total)
}

// textLike reports whether a MIME type is treated as text. The set must
// stay in sync with FileRecord.IsBinary so that a preview is never taken
// for a file the record model considers binary.
func textLike(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") ||
		strings.HasPrefix(mimeType, "application/json")
}

// GuessMIME returns the MIME type for a lowercase extension, or "" when
// unknown. The static table takes precedence over the platform database.
func GuessMIME(ext string) string {
	if ext == "" {
		return ""
	}
	if m, ok := mimeTable[ext]; ok {
		return m
	}
	m := mime.TypeByExtension(ext)
	if m == "" {
		return ""
	}
	// Strip parameters like "; charset=utf-8".
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}
