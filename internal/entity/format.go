package entity

import (
	"fmt"

	"opp/internal/common"
)

// AudioFormat is the closed set of audio containers the podcast accepts.
// The values are the persisted form and double as filename extensions.
type AudioFormat string

const (
	FormatMP3       AudioFormat = "mp3"
	FormatOggOpus   AudioFormat = "opus" // Looks wrong, but not: Opus files use .opus
	FormatOggVorbis AudioFormat = "ogg"
)

const (
	mimeTypeMPEG = "audio/mpeg"
	mimeTypeOgg  = "audio/ogg"
)

// ParseAudioFormat converts the persisted string form back to an AudioFormat.
func ParseAudioFormat(s string) (AudioFormat, error) {
	switch AudioFormat(s) {
	case FormatMP3, FormatOggOpus, FormatOggVorbis:
		return AudioFormat(s), nil
	}

	return "", fmt.Errorf("unknown audio format %q: %w", s, common.ErrInvalidAudioFormat)
}

// Extension produces the canonical filename extension for the format.
func (f AudioFormat) Extension() string {
	return string(f)
}

// MimeType produces the MIME type served for the format. Both Ogg variants
// share audio/ogg.
func (f AudioFormat) MimeType() string {
	if f == FormatMP3 {
		return mimeTypeMPEG
	}

	return mimeTypeOgg
}
