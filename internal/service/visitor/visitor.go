package visitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"opp/internal/common"
	"opp/internal/entity"
)

const serviceName = "visitor"

// Datastore is the read-only storage capability the visitor use case
// depends on.
type Datastore interface {
	GetChannel(ctx context.Context) (*entity.Channel, error)
	GetEpisodes(ctx context.Context) ([]*entity.Episode, error)
	GetEpisode(ctx context.Context, guid string) (*entity.Episode, error)
}

// ChannelData is the public channel record.
type ChannelData struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Author      string   `json:"author"`
	Email       string   `json:"email"`
	Language    string   `json:"language"`
	Category    string   `json:"category"`
	Explicit    bool     `json:"explicit"`
	Keywords    []string `json:"keywords"`
}

// EpisodeData is the public episode record. The blob path stays out of
// serialized output; it only serves the download handler.
type EpisodeData struct {
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	GUID            string             `json:"guid"`
	Duration        int                `json:"duration"`
	PublicationDate string             `json:"publication_date"`
	AudioFormat     entity.AudioFormat `json:"audio_format"`
	Path            string             `json:"-"`
}

// PodcastData is one read-only snapshot of everything a visitor needs to
// follow the podcast.
type PodcastData struct {
	Channel  ChannelData    `json:"channel"`
	Episodes []*EpisodeData `json:"episodes"`
}

// VisitorService is the read-only projection of the podcast for public
// consumption.
type VisitorService struct {
	store Datastore
	log   *slog.Logger
}

func NewVisitorService(store Datastore, log *slog.Logger) *VisitorService {
	return &VisitorService{
		store: store,
		log:   log.With(slog.String("service", serviceName)),
	}
}

// PodcastData assembles a fresh snapshot on every call; nothing is
// cached.
func (v *VisitorService) PodcastData(ctx context.Context) (*PodcastData, error) {
	ch, err := v.store.GetChannel(ctx)
	if err != nil {
		v.log.Error("Cannot get channel", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get channel: %w", err)
	}

	episodes, err := v.store.GetEpisodes(ctx)
	if err != nil {
		v.log.Error("Cannot get episodes", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get episodes: %w", err)
	}

	data := &PodcastData{
		Channel:  channelToData(*ch),
		Episodes: make([]*EpisodeData, 0, len(episodes)),
	}

	for _, ep := range episodes {
		record := episodeToData(*ep)
		data.Episodes = append(data.Episodes, &record)
	}

	return data, nil
}

// Episode produces a single episode record, or nil when the guid is
// unknown. Unlike the admin side, an absent episode is not an error here:
// on the public surface a miss is a routine 404, not an exceptional
// condition.
func (v *VisitorService) Episode(ctx context.Context, guid string) (*EpisodeData, error) {
	ep, err := v.store.GetEpisode(ctx, guid)
	if err != nil {
		if errors.Is(err, common.ErrEpisodeNotFound) {
			return nil, nil
		}

		v.log.Error("Cannot get episode", slog.String("guid", guid), slog.Any("error", err))

		return nil, fmt.Errorf("cannot get episode %s: %w", guid, err)
	}

	record := episodeToData(*ep)

	return &record, nil
}

func channelToData(ch entity.Channel) ChannelData {
	return ChannelData{
		Title:       ch.Title,
		Link:        ch.Link,
		Description: ch.Description,
		Image:       ch.Image,
		Author:      ch.Author,
		Email:       ch.Email,
		Language:    ch.Language,
		Category:    ch.Category,
		Explicit:    ch.Explicit,
		Keywords:    ch.Keywords,
	}
}

func episodeToData(ep entity.Episode) EpisodeData {
	return EpisodeData{
		Title:           ep.Title,
		Description:     ep.Description,
		GUID:            ep.GUID,
		Duration:        ep.Duration,
		PublicationDate: ep.PublicationDate.String(),
		AudioFormat:     ep.AudioFormat,
		Path:            ep.Path,
	}
}
