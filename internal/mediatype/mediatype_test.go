package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuess(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":         JPEG,
		"dir/IMG_0001.heic": HEIC,
		"song.mp3":          "audio/mpeg",
		"clip.mov":          "video/quicktime",
		"notes.txt":         "text/plain",
		"Makefile":          "",
		"archive.unknown1":  "",
	}
	for name, want := range tests {
		assert.Equal(t, want, Guess(name), name)
	}
}

func TestShortAndClass(t *testing.T) {
	assert.Equal(t, "image", Short("image/png"))
	assert.Equal(t, "", Short(""))

	c, ok := Class("audio")
	assert.True(t, ok)
	assert.Equal(t, ClassMusic, c)

	_, ok = Class("text")
	assert.False(t, ok)
}

func TestIsHEIC(t *testing.T) {
	assert.True(t, IsHEIC("a/b/c.HEIC"))
	assert.False(t, IsHEIC("c.jpg"))
}
