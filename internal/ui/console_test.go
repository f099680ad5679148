package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_PlainOutputForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Step(1, 5, "Cleaning up existing %s instances...", "Chrome")
	c.NowPlaying("Artist X", "Song A")
	c.Warn("player bar not found")
	c.Error("Chrome not found at %s", "/opt/chrome")
	c.Prompt("Press ENTER to start monitoring...")

	assert.Equal(t,
		"[1/5] Cleaning up existing Chrome instances...\n"+
			"Now Playing: Artist X - Song A\n"+
			"Warning: player bar not found\n"+
			"ERROR: Chrome not found at /opt/chrome\n"+
			"Press ENTER to start monitoring...",
		buf.String())
}
