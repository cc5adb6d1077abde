package audio

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/dhowden/tag"
)

// TestFromReaderFallsBackToExtension untagged data uses the file name
func TestFromReaderFallsBackToExtension(t *testing.T) {
	src, err := FromReader(strings.NewReader("not really audio"), "song.WAV")
	if err != nil {
		t.Fatalf("from reader: %v", err)
	}
	if src.MIME != "audio/wav" {
		t.Fatalf("mime %q", src.MIME)
	}
	if src.Base64 != base64.StdEncoding.EncodeToString([]byte("not really audio")) {
		t.Fatalf("payload not encoded")
	}
	if !strings.HasPrefix(src.DataURI(), "data:audio/wav;base64,") {
		t.Fatalf("data uri %q", src.DataURI())
	}
}

// TestFromReaderTooLarge
func TestFromReaderTooLarge(t *testing.T) {
	_, err := FromReader(strings.NewReader(strings.Repeat("x", MaxBytes+1)), "a.mp3")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expect too large, got %v", err)
	}
}

// TestMimeFor tag file types win over the extension
func TestMimeFor(t *testing.T) {
	cases := []struct {
		ft   tag.FileType
		name string
		want string
	}{
		{tag.FLAC, "a.mp3", "audio/flac"},
		{tag.M4A, "", "audio/mp4"},
		{tag.OGG, "a", "audio/ogg"},
		{tag.UnknownFileType, "a.ogg", "audio/ogg"},
		{tag.UnknownFileType, "a.xyz", "audio/mpeg"},
	}
	for _, c := range cases {
		if got := mimeFor(c.ft, c.name); got != c.want {
			t.Fatalf("%v %q: got %q want %q", c.ft, c.name, got, c.want)
		}
	}
}

// TestParseDataURI only base64 audio payloads pass
func TestParseDataURI(t *testing.T) {
	src, err := ParseDataURI("data:audio/mpeg;base64,SUQzBAAAAAAA")
	if err != nil || src.MIME != "audio/mpeg" || src.Base64 != "SUQzBAAAAAAA" {
		t.Fatalf("valid uri rejected: %v %+v", err, src)
	}
	bad := []string{
		"",
		"javascript:alert(1)",
		"data:text/html;base64,PHNjcmlwdD4=",
		`data:audio/mpeg;base64,AAAA" onerror="alert(1)`,
		"data:audio/mpeg,plain",
		"https://example.com/a.mp3",
	}
	for _, uri := range bad {
		if _, err := ParseDataURI(uri); !errors.Is(err, ErrInvalidDataURI) {
			t.Fatalf("%q accepted", uri)
		}
	}
}
