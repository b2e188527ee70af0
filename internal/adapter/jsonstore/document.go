package jsonstore

import (
	"opp/internal/entity"
)

// The persisted document layout. It must stay bit-compatible with
// existing deployments: image and keywords serialize as null when unset,
// publication dates as "YYYY-MM-DD" strings and audio formats as their
// extension form ("mp3", "opus", "ogg").

type channelDocument struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Image       *string   `json:"image"`
	Author      string    `json:"author"`
	Email       string    `json:"email"`
	Language    string    `json:"language"`
	Category    string    `json:"category"`
	Explicit    bool      `json:"explicit"`
	Keywords    *[]string `json:"keywords"`
}

type episodeDocument struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	GUID            string `json:"guid"`
	Duration        int    `json:"duration"`
	PublicationDate string `json:"publication_date"`
	AudioFormat     string `json:"audio_format"`
}

type document struct {
	Channel  *channelDocument  `json:"channel"`
	Episodes []episodeDocument `json:"episodes"`
}

func channelToDocument(c entity.Channel) *channelDocument {
	doc := &channelDocument{
		Title:       c.Title,
		Link:        c.Link,
		Description: c.Description,
		Author:      c.Author,
		Email:       c.Email,
		Language:    c.Language,
		Category:    c.Category,
		Explicit:    c.Explicit,
	}

	if c.Image != "" {
		doc.Image = &c.Image
	}
	if c.Keywords != nil {
		doc.Keywords = &c.Keywords
	}

	return doc
}

func (d *channelDocument) toChannel() entity.Channel {
	ch := entity.Channel{
		Title:       d.Title,
		Link:        d.Link,
		Description: d.Description,
		Author:      d.Author,
		Email:       d.Email,
		Language:    d.Language,
		Category:    d.Category,
		Explicit:    d.Explicit,
	}

	if d.Image != nil {
		ch.Image = *d.Image
	}
	if d.Keywords != nil {
		ch.Keywords = *d.Keywords
	}

	return ch
}

func episodeToDocument(e entity.Episode) episodeDocument {
	return episodeDocument{
		Title:           e.Title,
		Description:     e.Description,
		GUID:            e.GUID,
		Duration:        e.Duration,
		PublicationDate: e.PublicationDate.String(),
		AudioFormat:     string(e.AudioFormat),
	}
}

func (s *Store) toEpisode(d episodeDocument) (*entity.Episode, error) {
	date, err := entity.ParseDate(d.PublicationDate)
	if err != nil {
		return nil, err
	}

	format, err := entity.ParseAudioFormat(d.AudioFormat)
	if err != nil {
		return nil, err
	}

	return &entity.Episode{
		Title:           d.Title,
		Description:     d.Description,
		GUID:            d.GUID,
		Duration:        d.Duration,
		PublicationDate: date,
		AudioFormat:     format,
		Path:            s.AudioFilePath(d.GUID, format),
	}, nil
}
