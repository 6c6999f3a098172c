package store

import (
	"encoding/json"
	"time"

	"github.com/jamesainslie/insight/pkg/insight/types"
)

// SchemaVersion is incremented when the stored record format changes.
// A database written with a different version is rejected at open time
// rather than misread.
const SchemaVersion = 1

// Key prefixes. Records, video metadata, and the path index live in
// separate keyspaces so each can be iterated independently.
//
//	f:<id>    record row (JSON)
//	v:<id>    video metadata row (JSON), present only when probed
//	p:<path>  path index, value is the record id
//	m:        store metadata (schema version)
const (
	prefixRecord = "f:"
	prefixVideo  = "v:"
	prefixPath   = "p:"
	keySchema    = "m:__schema__"
)

func recordKey(id string) []byte { return []byte(prefixRecord + id) }
func videoKey(id string) []byte  { return []byte(prefixVideo + id) }
func pathKey(path string) []byte { return []byte(prefixPath + path) }

// storedRecord is the persisted row shape. Video metadata is stored in
// its own row; the record row carries everything else plus the save
// timestamp.
type storedRecord struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Extension string    `json:"extension"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
	Preview   *string   `json:"preview,omitempty"`
	MIMEType  string    `json:"mime_type,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

func (r *storedRecord) encode() ([]byte, error) {
	return json.Marshal(r)
}

func (r *storedRecord) decode(data []byte) error {
	return json.Unmarshal(data, r)
}

// toRecord converts the row back to the in-memory form. Video metadata
// is attached separately by the caller when a video row exists.
func (r *storedRecord) toRecord() types.FileRecord {
	return types.FileRecord{
		Path:      r.Path,
		Size:      r.Size,
		Extension: r.Extension,
		Created:   r.Created,
		Modified:  r.Modified,
		Preview:   r.Preview,
		MIMEType:  r.MIMEType,
	}
}

func encodeVideo(v *types.VideoMetadata) ([]byte, error) {
	return json.Marshal(v)
}

func decodeVideo(data []byte) (*types.VideoMetadata, error) {
	var v types.VideoMetadata
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
