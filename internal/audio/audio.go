package audio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhowden/tag"
)

// MaxBytes caps the size of an audio file embedded in an exported game
const MaxBytes = 25 << 20

var (
	ErrTooLarge       = errors.New("audio file too large")
	ErrInvalidDataURI = errors.New("invalid audio data uri")
)

var dataURIRegex = regexp.MustCompile(`^data:(audio/[a-zA-Z0-9.+-]+);base64,([A-Za-z0-9+/]+={0,2})$`)

var extensionMIME = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// Source is an audio track ready to be embedded as a data URI
type Source struct {
	MIME   string
	Base64 string
	// Title comes from the file tags when present
	Title string
}

// DataURI renders the source as a data: URI
func (s Source) DataURI() string {
	return "data:" + s.MIME + ";base64," + s.Base64
}

// FromReader reads a whole audio file and encodes it. The type is taken from
// the file tags, then from the magic bytes, then from the file name.
func FromReader(r io.Reader, name string) (*Source, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}

	src := &Source{Base64: base64.StdEncoding.EncodeToString(data)}
	fileType := tag.UnknownFileType

	if m, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		fileType = m.FileType()
		src.Title = strings.TrimSpace(m.Title())
	} else if _, ft, err := tag.Identify(bytes.NewReader(data)); err == nil {
		fileType = ft
	}

	src.MIME = mimeFor(fileType, name)
	return src, nil
}

// ParseDataURI accepts only base64 audio data URIs
func ParseDataURI(uri string) (*Source, error) {
	match := dataURIRegex.FindStringSubmatch(strings.TrimSpace(uri))
	if match == nil {
		return nil, ErrInvalidDataURI
	}
	if base64.StdEncoding.DecodedLen(len(match[2])) > MaxBytes {
		return nil, ErrTooLarge
	}
	return &Source{MIME: strings.ToLower(match[1]), Base64: match[2]}, nil
}

func mimeFor(fileType tag.FileType, name string) string {
	switch fileType {
	case tag.MP3:
		return "audio/mpeg"
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		return "audio/mp4"
	case tag.FLAC:
		return "audio/flac"
	case tag.OGG:
		return "audio/ogg"
	}
	if m, ok := extensionMIME[strings.ToLower(filepath.Ext(name))]; ok {
		return m
	}
	return "audio/mpeg"
}
