package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"opp/internal/common"
	"opp/internal/entity"
)

const serviceName = "admin"

// Datastore is the storage capability the administrator use case depends
// on. Concrete adapters implement it; the service never reaches past it.
type Datastore interface {
	InitializeChannel(ctx context.Context, ch entity.Channel) error
	GetChannel(ctx context.Context) (*entity.Channel, error)
	UpdateChannel(ctx context.Context, patch entity.ChannelPatch) error
	CreateEpisode(ctx context.Context, ep entity.Episode, audio io.Reader) (string, error)
	GetEpisodes(ctx context.Context) ([]*entity.Episode, error)
	UpdateEpisode(ctx context.Context, guid string, patch entity.EpisodePatch) error
	DeleteEpisode(ctx context.Context, guid string) error
}

// Extractor inspects an audio stream's container tags. It is a pure read
// used to pre-fill episode fields; nothing is persisted.
type Extractor interface {
	Extract(r io.ReadSeeker) (*entity.AudioDetails, error)
}

// ChannelInput carries the raw channel fields as a caller supplies them.
type ChannelInput struct {
	Title       string
	Link        string
	Description string
	Image       string
	Author      string
	Email       string
	Language    string
	Category    string
	Explicit    bool
	Keywords    []string
}

// EpisodeInput carries the raw episode fields for creation.
type EpisodeInput struct {
	Title           string
	Description     string
	Duration        int
	PublicationDate entity.Date
	AudioFormat     string
}

// ChannelData is the caller-facing channel record. The internal entity
// never crosses the service boundary.
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

// EpisodeData is the caller-facing episode record.
type EpisodeData struct {
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	GUID            string             `json:"guid"`
	Duration        int                `json:"duration"`
	PublicationDate string             `json:"publication_date"`
	AudioFormat     entity.AudioFormat `json:"audio_format"`
	Path            string             `json:"-"`
}

// AdminService is the full CRUD use case for the podcast owner. Datastore
// failures pass through unchanged; the service adds validation and
// normalization, never retries.
type AdminService struct {
	store     Datastore
	extractor Extractor
	log       *slog.Logger
}

func NewAdminService(store Datastore, extractor Extractor, log *slog.Logger) *AdminService {
	return &AdminService{
		store:     store,
		extractor: extractor,
		log:       log.With(slog.String("service", serviceName)),
	}
}

func (a *AdminService) InitializeChannel(ctx context.Context, in ChannelInput) error {
	ch, err := channelFromInput(in)
	if err != nil {
		return err
	}

	if err := a.store.InitializeChannel(ctx, ch); err != nil {
		a.log.Error("Cannot initialize channel", slog.Any("error", err))

		return fmt.Errorf("cannot initialize channel: %w", err)
	}

	return nil
}

func (a *AdminService) GetChannel(ctx context.Context) (*ChannelData, error) {
	ch, err := a.store.GetChannel(ctx)
	if err != nil {
		a.log.Error("Cannot get channel", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get channel: %w", err)
	}

	data := channelToData(*ch)

	return &data, nil
}

func (a *AdminService) UpdateChannel(ctx context.Context, patch entity.ChannelPatch) error {
	if err := a.store.UpdateChannel(ctx, patch); err != nil {
		a.log.Error("Cannot update channel", slog.Any("error", err))

		return fmt.Errorf("cannot update channel: %w", err)
	}

	return nil
}

func (a *AdminService) CreateEpisode(ctx context.Context, in EpisodeInput, audio io.Reader) (string, error) {
	ep, err := episodeFromInput(in)
	if err != nil {
		return "", err
	}

	guid, err := a.store.CreateEpisode(ctx, ep, audio)
	if err != nil {
		a.log.Error("Cannot create episode", slog.String("title", in.Title), slog.Any("error", err))

		return "", fmt.Errorf("cannot create episode: %w", err)
	}

	return guid, nil
}

func (a *AdminService) GetEpisodes(ctx context.Context) ([]*EpisodeData, error) {
	episodes, err := a.store.GetEpisodes(ctx)
	if err != nil {
		a.log.Error("Cannot get episodes", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get episodes: %w", err)
	}

	records := make([]*EpisodeData, 0, len(episodes))
	for _, ep := range episodes {
		record := episodeToData(*ep)
		records = append(records, &record)
	}

	return records, nil
}

func (a *AdminService) UpdateEpisode(ctx context.Context, guid string, patch entity.EpisodePatch) error {
	if err := a.store.UpdateEpisode(ctx, guid, patch); err != nil {
		a.log.Error("Cannot update episode", slog.String("guid", guid), slog.Any("error", err))

		return fmt.Errorf("cannot update episode %s: %w", guid, err)
	}

	return nil
}

func (a *AdminService) DeleteEpisode(ctx context.Context, guid string) error {
	if err := a.store.DeleteEpisode(ctx, guid); err != nil {
		a.log.Error("Cannot delete episode", slog.String("guid", guid), slog.Any("error", err))

		return fmt.Errorf("cannot delete episode %s: %w", guid, err)
	}

	return nil
}

func (a *AdminService) ExtractDetails(r io.ReadSeeker) (*entity.AudioDetails, error) {
	details, err := a.extractor.Extract(r)
	if err != nil {
		a.log.Error("Cannot extract audio details", slog.Any("error", err))

		return nil, fmt.Errorf("cannot extract audio details: %w", err)
	}

	return details, nil
}

func channelFromInput(in ChannelInput) (entity.Channel, error) {
	if in.Title == "" {
		return entity.Channel{}, fmt.Errorf("channel title is required: %w", common.ErrValidation)
	}
	if in.Link == "" {
		return entity.Channel{}, fmt.Errorf("channel link is required: %w", common.ErrValidation)
	}
	if in.Description == "" {
		return entity.Channel{}, fmt.Errorf("channel description is required: %w", common.ErrValidation)
	}

	ch := entity.Channel{
		Title:       in.Title,
		Link:        in.Link,
		Description: in.Description,
		Image:       in.Image,
		Author:      in.Author,
		Email:       in.Email,
		Language:    in.Language,
		Category:    in.Category,
		Explicit:    in.Explicit,
		Keywords:    in.Keywords,
	}

	return ch.Normalized(), nil
}

func episodeFromInput(in EpisodeInput) (entity.Episode, error) {
	if in.Title == "" {
		return entity.Episode{}, fmt.Errorf("episode title is required: %w", common.ErrValidation)
	}
	if in.Description == "" {
		return entity.Episode{}, fmt.Errorf("episode description is required: %w", common.ErrValidation)
	}
	if in.PublicationDate.IsZero() {
		return entity.Episode{}, fmt.Errorf("episode publication date is required: %w", common.ErrValidation)
	}

	format, err := entity.ParseAudioFormat(in.AudioFormat)
	if err != nil {
		return entity.Episode{}, err
	}

	return entity.Episode{
		Title:           in.Title,
		Description:     in.Description,
		Duration:        in.Duration,
		PublicationDate: in.PublicationDate,
		AudioFormat:     format,
	}, nil
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
