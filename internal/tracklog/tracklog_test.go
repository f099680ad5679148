package tracklog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist_log.txt")
	f := NewFile(path)

	require.NoError(t, f.Append(Track{Title: "Song A", Artist: "Artist X"}))
	require.NoError(t, f.Append(Track{Title: "Song B", Artist: "Artist Y"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Song A|Artist X\nSong B|Artist Y\n", string(data))
}

func TestAppend_KeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("Old|Band\n"), 0644))

	require.NoError(t, NewFile(path).Append(Track{Title: "Nouveau", Artist: "Groupe"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Old|Band\nNouveau|Groupe\n", string(data))
}

func TestAppend_UTF8AndLineBreaks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	f := NewFile(path)

	require.NoError(t, f.Append(Track{Title: "夜に駆ける\n(Live)", Artist: "YOASOBI"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "夜に駆ける (Live)|YOASOBI\n", string(data))
}

func TestAppend_UnwritableDirectory(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "missing", "log.txt"))

	assert.Error(t, f.Append(Track{Title: "a", Artist: "b"}))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want Track
		ok   bool
	}{
		{"Song A|Artist X", Track{"Song A", "Artist X"}, true},
		{"Song A|Artist X\r\n", Track{"Song A", "Artist X"}, true},
		{"Left | Right|Duo", Track{"Left | Right", "Duo"}, true},
		{"|", Track{}, true},
		{"no separator", Track{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseLine(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("A|X\n\ngarbage\nB|Y\n"), 0644))

	tracks, err := NewFile(path).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []Track{{"A", "X"}, {"B", "Y"}}, tracks)
}

func TestReadAll_MissingFile(t *testing.T) {
	tracks, err := NewFile(filepath.Join(t.TempDir(), "none.txt")).ReadAll()

	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestTrack_String(t *testing.T) {
	assert.Equal(t, "Artist X - Song A", Track{Title: "Song A", Artist: "Artist X"}.String())
}
