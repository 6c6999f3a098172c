package stats

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/insight/pkg/insight/types"
)

// Node is one position in the file tree. Exactly one of Children or
// Leaf is set: directories carry a child map keyed by segment name,
// files carry leaf metadata. The JSON form is the nested object shape
// used in reports, where a leaf is an object whose "size" is a number.
type Node struct {
	Children map[string]*Node
	Leaf     *LeafMeta
}

// LeafMeta is the per-file payload at a tree leaf.
type LeafMeta struct {
	Size      int64      `json:"size" yaml:"size"`
	Extension string     `json:"extension" yaml:"extension"`
	IsVideo   bool       `json:"is_video" yaml:"is_video"`
	Video     *VideoLeaf `json:"video,omitempty" yaml:"video,omitempty"`
}

// VideoLeaf is the report-facing video block on a leaf. Resolution is
// rendered as "WxH"; absent fields are omitted.
type VideoLeaf struct {
	Duration   float64 `json:"duration" yaml:"duration"`
	Resolution string  `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	FPS        float64 `json:"fps,omitempty" yaml:"fps,omitempty"`
	VideoCodec string  `json:"video_codec,omitempty" yaml:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty" yaml:"audio_codec,omitempty"`
}

// IsLeaf reports whether the node represents a file.
func (n *Node) IsLeaf() bool {
	return n.Leaf != nil
}

// BuildTree arranges records into a tree keyed by path segment. The
// leading root separator (and drive letter, on Windows) is stripped, so
// the first-level keys are the topmost named segments.
func BuildTree(records []types.FileRecord) *Node {
	root := &Node{Children: make(map[string]*Node)}

	for i := range records {
		rec := &records[i]
		segments := pathSegments(rec.Path)
		if len(segments) == 0 {
			continue
		}
		insert(root, segments, rec)
	}

	return root
}

func insert(root *Node, segments []string, rec *types.FileRecord) {
	node := root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node.Children[seg]
		if !ok || child.IsLeaf() {
			child = &Node{Children: make(map[string]*Node)}
			node.Children[seg] = child
		}
		node = child
	}
	node.Children[segments[len(segments)-1]] = &Node{Leaf: leafMeta(rec)}
}

func leafMeta(rec *types.FileRecord) *LeafMeta {
	meta := &LeafMeta{
		Size:      rec.Size,
		Extension: rec.Extension,
		IsVideo:   rec.IsVideo(),
	}

	if rec.HasVideoMetadata() {
		leaf := &VideoLeaf{
			Duration:   rec.Video.Duration,
			FPS:        rec.Video.FPS,
			VideoCodec: rec.Video.VideoCodec,
			AudioCodec: rec.Video.AudioCodec,
		}
		if rec.Video.HasResolution() {
			leaf.Resolution = rec.Video.Resolution()
		}
		meta.Video = leaf
	}

	return meta
}

// pathSegments splits an absolute path into its named segments, without
// the volume name or root separator.
func pathSegments(path string) []string {
	p := path[len(filepath.VolumeName(path)):]
	p = strings.TrimPrefix(p, string(filepath.Separator))
	if p == "" {
		return nil
	}
	return strings.Split(p, string(filepath.Separator))
}

// MarshalJSON renders a directory as its child map and a file as its
// leaf metadata object.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsLeaf() {
		return json.Marshal(n.Leaf)
	}
	return json.Marshal(n.Children)
}

// UnmarshalJSON reverses MarshalJSON. A leaf is recognized by a "size"
// key holding a number; directory children are always objects.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode tree node: %w", err)
	}

	if sizeRaw, ok := raw["size"]; ok {
		var size int64
		if err := json.Unmarshal(sizeRaw, &size); err == nil {
			var leaf LeafMeta
			if err := json.Unmarshal(data, &leaf); err != nil {
				return fmt.Errorf("decode tree leaf: %w", err)
			}
			n.Leaf = &leaf
			n.Children = nil
			return nil
		}
	}

	n.Children = make(map[string]*Node, len(raw))
	for name, childData := range raw {
		child := &Node{}
		if err := json.Unmarshal(childData, child); err != nil {
			return err
		}
		n.Children[name] = child
	}
	n.Leaf = nil
	return nil
}

// MarshalYAML mirrors the JSON shape for YAML reports.
func (n *Node) MarshalYAML() (any, error) {
	if n.IsLeaf() {
		return n.Leaf, nil
	}
	return n.Children, nil
}
