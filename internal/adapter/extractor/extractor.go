package extractor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	"opp/internal/common"
	"opp/internal/entity"
)

const (
	opusHeadMarker = "OpusHead"
	oggPageMarker  = "OggS"

	// Opus granule positions always count a 48 kHz sample clock,
	// independent of the encoded rate.
	opusSampleRate = 48000
)

var vorbisIDMarker = append([]byte{0x01}, []byte("vorbis")...)

// TagExtractor inspects an audio stream's container tags and produces the
// details an administrator needs to publish it as an episode. It never
// persists anything.
type TagExtractor struct {
	log *slog.Logger
}

func New(log *slog.Logger) *TagExtractor {
	return &TagExtractor{
		log: log.With(slog.String("item", "TagExtractor")),
	}
}

func (e *TagExtractor) Extract(r io.ReadSeeker) (*entity.AudioDetails, error) {
	length, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("cannot measure audio stream: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("cannot rewind audio stream: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read audio stream: %w", err)
	}

	// A stream without readable tags is still publishable; the caller
	// supplies title and description instead. Only the frame scan below
	// decides whether the container itself is acceptable.
	ft := tag.UnknownFileType
	title, desc := "", ""
	if meta, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		ft = meta.FileType()
		title = strings.TrimSpace(meta.Title())
		desc = description(meta)
	} else {
		e.log.Debug("No readable tags in audio stream", slog.Any("error", err))
	}

	format := classify(ft, data)

	duration, err := streamDuration(format, data)
	if err != nil {
		return nil, err
	}

	details := &entity.AudioDetails{
		AudioFormat: format,
		Duration:    duration,
		Length:      length,
		Title:       title,
		Description: desc,
	}

	e.log.Debug("Extracted audio details",
		slog.String("format", string(details.AudioFormat)),
		slog.Int("duration", details.Duration),
		slog.Int64("length", details.Length))

	return details, nil
}

// classify maps the container type to an AudioFormat. Ogg streams are
// told apart by their first codec header packet; anything unrecognized
// counts as MP3.
func classify(ft tag.FileType, data []byte) entity.AudioFormat {
	if ft != tag.OGG && !bytes.HasPrefix(data, []byte(oggPageMarker)) {
		return entity.FormatMP3
	}

	if bytes.Contains(head(data), []byte(opusHeadMarker)) {
		return entity.FormatOggOpus
	}

	return entity.FormatOggVorbis
}

func streamDuration(format entity.AudioFormat, data []byte) (int, error) {
	if format == entity.FormatMP3 {
		return mp3Duration(data)
	}

	return oggDuration(format, data)
}

// mp3Duration walks every frame and sums the frame durations.
func mp3Duration(data []byte) (int, error) {
	decoder := mp3.NewDecoder(bytes.NewReader(data))

	var (
		frame   mp3.Frame
		skipped int
		total   float64
	)

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return 0, fmt.Errorf("cannot decode mp3 frames: %w", common.ErrInvalidAudioFormat)
		}

		total += frame.Duration().Seconds()
	}

	if total <= 0 {
		return 0, fmt.Errorf("no mp3 frames found: %w", common.ErrInvalidAudioFormat)
	}

	return int(math.Round(total)), nil
}

// oggDuration derives the play time from the granule position of the last
// page: a PCM sample count, divided by the codec's sample clock.
func oggDuration(format entity.AudioFormat, data []byte) (int, error) {
	granule, err := lastGranulePosition(data)
	if err != nil {
		return 0, err
	}

	rate := opusSampleRate
	if format == entity.FormatOggVorbis {
		rate, err = vorbisSampleRate(data)
		if err != nil {
			return 0, err
		}
	}

	return int(math.Round(float64(granule) / float64(rate))), nil
}

func lastGranulePosition(data []byte) (int64, error) {
	i := bytes.LastIndex(data, []byte(oggPageMarker))
	if i < 0 || i+14 > len(data) {
		return 0, fmt.Errorf("no ogg pages found: %w", common.ErrInvalidAudioFormat)
	}

	// Page header: capture pattern (4), version (1), header type (1),
	// granule position (8, little endian).
	return int64(binary.LittleEndian.Uint64(data[i+6 : i+14])), nil
}

func vorbisSampleRate(data []byte) (int, error) {
	i := bytes.Index(data, vorbisIDMarker)
	if i < 0 || i+16 > len(data) {
		return 0, fmt.Errorf("no vorbis identification header: %w", common.ErrInvalidAudioFormat)
	}

	// Identification header: packet type (1), "vorbis" (6), version (4),
	// channels (1), sample rate (4, little endian).
	rate := int(binary.LittleEndian.Uint32(data[i+12 : i+16]))
	if rate <= 0 {
		return 0, fmt.Errorf("invalid vorbis sample rate: %w", common.ErrInvalidAudioFormat)
	}

	return rate, nil
}

// description digs the episode description out of the raw tag map. MP3
// files carry it in a TXXX user frame, Ogg files in a plain vorbis
// comment.
func description(meta tag.Metadata) string {
	keys := []string{"TXXX:description", "TXXX", "description", "DESCRIPTION"}

	raw := meta.Raw()
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s := unwrapTagValue(v); s != "" {
				return s
			}
		}
	}

	return ""
}

// unwrapTagValue flattens the shapes tag readers hand back, including
// single-element sequences.
func unwrapTagValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []string:
		if len(val) > 0 {
			return strings.TrimSpace(val[0])
		}

		return ""
	case *tag.Comm:
		return strings.TrimSpace(val.Text)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}

	return data
}
