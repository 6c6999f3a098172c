package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/insight/pkg/insight/types"
)

func TestBuildTree_Structure(t *testing.T) {
	records := []types.FileRecord{
		{Path: "/home/user/a.txt", Size: 10, Extension: ".txt"},
		{Path: "/home/user/docs/b.pdf", Size: 20, Extension: ".pdf"},
		{Path: "/home/other/c.mp4", Size: 30, Extension: ".mp4",
			Video: &types.VideoMetadata{Duration: 60, Width: 1280, Height: 720}},
	}

	tree := BuildTree(records)

	home := tree.Children["home"]
	require.NotNil(t, home)
	assert.False(t, home.IsLeaf())

	user := home.Children["user"]
	require.NotNil(t, user)

	a := user.Children["a.txt"]
	require.NotNil(t, a)
	require.True(t, a.IsLeaf())
	assert.Equal(t, int64(10), a.Leaf.Size)
	assert.Equal(t, ".txt", a.Leaf.Extension)
	assert.False(t, a.Leaf.IsVideo)
	assert.Nil(t, a.Leaf.Video)

	b := home.Children["user"].Children["docs"].Children["b.pdf"]
	require.NotNil(t, b)
	assert.Equal(t, int64(20), b.Leaf.Size)

	c := home.Children["other"].Children["c.mp4"]
	require.NotNil(t, c)
	assert.True(t, c.Leaf.IsVideo)
	require.NotNil(t, c.Leaf.Video)
	assert.Equal(t, 60.0, c.Leaf.Video.Duration)
	assert.Equal(t, "1280x720", c.Leaf.Video.Resolution)
}

func TestBuildTree_Empty(t *testing.T) {
	tree := BuildTree(nil)
	require.NotNil(t, tree)
	assert.Empty(t, tree.Children)
	assert.False(t, tree.IsLeaf())
}

func TestTree_JSONShape(t *testing.T) {
	records := []types.FileRecord{
		{Path: "/data/report.txt", Size: 42, Extension: ".txt"},
	}

	data, err := json.Marshal(BuildTree(records))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	dataDir, ok := raw["data"].(map[string]any)
	require.True(t, ok)
	leaf, ok := dataDir["report.txt"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), leaf["size"])
	assert.Equal(t, ".txt", leaf["extension"])
	assert.Equal(t, false, leaf["is_video"])
}

func TestTree_RoundTrip(t *testing.T) {
	records := []types.FileRecord{
		{Path: "/a/b/c.txt", Size: 1, Extension: ".txt"},
		{Path: "/a/d.mp4", Size: 2, Extension: ".mp4",
			Video: &types.VideoMetadata{Duration: 9.5, Width: 640, Height: 480, VideoCodec: "h264"}},
		{Path: "/e.bin", Size: 3, Extension: ".bin"},
	}
	original := BuildTree(records)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Node
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, leafNames(original), leafNames(&decoded))

	c := decoded.Children["a"].Children["b"].Children["c.txt"]
	require.True(t, c.IsLeaf())
	assert.Equal(t, int64(1), c.Leaf.Size)

	d := decoded.Children["a"].Children["d.mp4"]
	require.True(t, d.IsLeaf())
	require.NotNil(t, d.Leaf.Video)
	assert.Equal(t, 9.5, d.Leaf.Video.Duration)
	assert.Equal(t, "640x480", d.Leaf.Video.Resolution)
}

func TestBuildTree_DuplicateDirectoriesShareNode(t *testing.T) {
	records := []types.FileRecord{
		{Path: "/x/one.txt", Size: 1, Extension: ".txt"},
		{Path: "/x/two.txt", Size: 2, Extension: ".txt"},
	}

	tree := BuildTree(records)

	x := tree.Children["x"]
	require.NotNil(t, x)
	assert.Len(t, x.Children, 2)
}

// leafNames collects the set of leaf file names in a tree.
func leafNames(n *Node) map[string]bool {
	names := make(map[string]bool)
	var walk func(node *Node, name string)
	walk = func(node *Node, name string) {
		if node.IsLeaf() {
			names[name] = true
			return
		}
		for child, childNode := range node.Children {
			walk(childNode, child)
		}
	}
	walk(n, "")
	return names
}
