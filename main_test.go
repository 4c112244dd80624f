package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KenKaminsky/voice-dictation/config"
	"github.com/KenKaminsky/voice-dictation/paste"
)

func TestShellQuote(t *testing.T) {
	require.Equal(t, `'/Applications/Voice Dictation'`, shellQuote("/Applications/Voice Dictation"))
	require.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

func TestPasteConfig(t *testing.T) {
	got := pasteConfig(config.PasteConfig{Mode: "typing", SettleMS: 80, CharDelayMS: 7, RestoreClipboard: true})
	require.Equal(t, paste.ModeTyping, got.Mode)
	require.Equal(t, 80*time.Millisecond, got.SettleDelay)
	require.Equal(t, 7*time.Millisecond, got.CharDelay)
	require.True(t, got.RestoreClipboard)
}

func TestPrintPaster(t *testing.T) {
	var b strings.Builder
	p := &printPaster{w: &b}
	p.Paste("hello world")
	require.Equal(t, "PASTED hello world\n", b.String())
}
