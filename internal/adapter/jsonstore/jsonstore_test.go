package jsonstore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"opp/internal/common"
	"opp/internal/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	store, err := NewWithFS(afero.NewMemMapFs(), "/data", log)
	require.NoError(t, err)

	return store
}

func testChannel() entity.Channel {
	return entity.Channel{
		Title:       "Tech Talk",
		Link:        "https://example.com",
		Description: "A show",
		Image:       "https://example.com/cover.png",
		Author:      "A. Person",
		Email:       "a@example.com",
		Language:    "en",
		Category:    "Comedy",
		Explicit:    false,
		Keywords:    []string{"tech", "talk"},
	}
}

func mustDate(t *testing.T, s string) entity.Date {
	t.Helper()

	date, err := entity.ParseDate(s)
	require.NoError(t, err)

	return date
}

func createEpisode(t *testing.T, store *Store, title, date string) string {
	t.Helper()

	guid, err := store.CreateEpisode(context.Background(), entity.Episode{
		Title:           title,
		Description:     "About " + title,
		Duration:        600,
		PublicationDate: mustDate(t, date),
		AudioFormat:     entity.FormatMP3,
	}, strings.NewReader("audio bytes of "+title))
	require.NoError(t, err)

	return guid
}

func TestInitializeChannelRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testChannel()
	require.NoError(t, store.InitializeChannel(ctx, want))

	got, err := store.GetChannel(ctx)
	require.NoError(t, err)
	require.Equal(t, want, *got)
}

func TestInitializeChannelRejectsSecondInitialize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	err := store.InitializeChannel(ctx, testChannel())
	require.ErrorIs(t, err, common.ErrChannelAlreadyInitialized)
}

func TestOperationsBeforeInitialize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetChannel(ctx)
	require.ErrorIs(t, err, common.ErrChannelNotInitialized)

	err = store.UpdateChannel(ctx, entity.ChannelPatch{})
	require.ErrorIs(t, err, common.ErrChannelNotInitialized)

	_, err = store.CreateEpisode(ctx, entity.Episode{
		Title:           "Orphan",
		Description:     "No channel yet",
		PublicationDate: mustDate(t, "2024-01-01"),
		AudioFormat:     entity.FormatMP3,
	}, strings.NewReader("audio"))
	require.ErrorIs(t, err, common.ErrChannelNotInitialized)

	_, err = store.GetEpisodes(ctx)
	require.ErrorIs(t, err, common.ErrChannelNotInitialized)
}

func TestUpdateChannelPartial(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	boolPtr := func(b bool) *bool { return &b }
	keywordsPtr := func(kw []string) *[]string { return &kw }

	testCases := []struct {
		name  string
		patch entity.ChannelPatch
		want  func(ch entity.Channel) entity.Channel
	}{
		{
			name:  "empty patch changes nothing",
			patch: entity.ChannelPatch{},
			want:  func(ch entity.Channel) entity.Channel { return ch },
		},
		{
			name:  "title only",
			patch: entity.ChannelPatch{Title: strPtr("New Title")},
			want: func(ch entity.Channel) entity.Channel {
				ch.Title = "New Title"
				return ch
			},
		},
		{
			name: "several fields",
			patch: entity.ChannelPatch{
				Description: strPtr("A better show"),
				Author:      strPtr("B. Person"),
				Language:    strPtr("de"),
			},
			want: func(ch entity.Channel) entity.Channel {
				ch.Description = "A better show"
				ch.Author = "B. Person"
				ch.Language = "de"
				return ch
			},
		},
		{
			name:  "explicit true is applied",
			patch: entity.ChannelPatch{Explicit: boolPtr(true)},
			want: func(ch entity.Channel) entity.Channel {
				ch.Explicit = true
				return ch
			},
		},
		{
			name:  "empty keywords are a real value, not an omission",
			patch: entity.ChannelPatch{Keywords: keywordsPtr([]string{})},
			want: func(ch entity.Channel) entity.Channel {
				ch.Keywords = []string{}
				return ch
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			ctx := context.Background()

			initial := testChannel()
			require.NoError(t, store.InitializeChannel(ctx, initial))
			require.NoError(t, store.UpdateChannel(ctx, tc.patch))

			got, err := store.GetChannel(ctx)
			require.NoError(t, err)
			require.Equal(t, tc.want(initial), *got)
		})
	}
}

func TestUpdateChannelExplicitFalseIsApplied(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ch := testChannel()
	ch.Explicit = true
	require.NoError(t, store.InitializeChannel(ctx, ch))

	explicit := false
	require.NoError(t, store.UpdateChannel(ctx, entity.ChannelPatch{Explicit: &explicit}))

	got, err := store.GetChannel(ctx)
	require.NoError(t, err)
	require.False(t, got.Explicit)
	require.Equal(t, ch.Title, got.Title)
}

func TestEpisodeOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	createEpisode(t, store, "January", "2024-01-01")
	createEpisode(t, store, "March", "2024-03-01")
	createEpisode(t, store, "February", "2024-02-01")

	episodes, err := store.GetEpisodes(ctx)
	require.NoError(t, err)
	require.Len(t, episodes, 3)

	require.Equal(t, "2024-03-01", episodes[0].PublicationDate.String())
	require.Equal(t, "2024-02-01", episodes[1].PublicationDate.String())
	require.Equal(t, "2024-01-01", episodes[2].PublicationDate.String())
}

func TestEpisodeOrderingTiesKeepCreationOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	createEpisode(t, store, "First", "2024-05-01")
	createEpisode(t, store, "Second", "2024-05-01")
	createEpisode(t, store, "Third", "2024-05-01")

	episodes, err := store.GetEpisodes(ctx)
	require.NoError(t, err)
	require.Len(t, episodes, 3)

	require.Equal(t, "First", episodes[0].Title)
	require.Equal(t, "Second", episodes[1].Title)
	require.Equal(t, "Third", episodes[2].Title)
}

func TestCreateEpisodeGUIDsAreUnique(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		guid := createEpisode(t, store, "Episode", "2024-01-01")

		_, err := uuid.Parse(guid)
		require.NoError(t, err)

		_, dup := seen[guid]
		require.False(t, dup, "guid %s assigned twice", guid)
		seen[guid] = struct{}{}
	}
}

func TestCreateEpisodeWritesBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	guid, err := store.CreateEpisode(ctx, entity.Episode{
		Title:           "Pilot",
		Description:     "The first one",
		Duration:        11,
		PublicationDate: mustDate(t, "2024-01-01"),
		AudioFormat:     entity.FormatOggOpus,
	}, strings.NewReader("opus audio bytes"))
	require.NoError(t, err)

	path := store.AudioFilePath(guid, entity.FormatOggOpus)
	require.Equal(t, "/data/"+guid+".opus", path)

	content, err := afero.ReadFile(store.fs, path)
	require.NoError(t, err)
	require.Equal(t, "opus audio bytes", string(content))

	episodes, err := store.GetEpisodes(ctx)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	require.Equal(t, path, episodes[0].Path)
}

func TestUpdateEpisodePartial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	guid := createEpisode(t, store, "Original", "2024-01-01")

	newTitle := "New Title"
	require.NoError(t, store.UpdateEpisode(ctx, guid, entity.EpisodePatch{Title: &newTitle}))

	ep, err := store.GetEpisode(ctx, guid)
	require.NoError(t, err)
	require.Equal(t, "New Title", ep.Title)
	require.Equal(t, "About Original", ep.Description)
	require.Equal(t, 600, ep.Duration)
	require.Equal(t, "2024-01-01", ep.PublicationDate.String())
}

func TestUpdateEpisodeDoesNotTouchOthers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	control := createEpisode(t, store, "Control", "2024-03-01")
	target := createEpisode(t, store, "Target", "2024-01-01")

	before, err := store.GetEpisode(ctx, control)
	require.NoError(t, err)

	newTitle := "Renamed"
	newDuration := 42
	require.NoError(t, store.UpdateEpisode(ctx, target, entity.EpisodePatch{
		Title:    &newTitle,
		Duration: &newDuration,
	}))

	after, err := store.GetEpisode(ctx, control)
	require.NoError(t, err)
	require.Equal(t, *before, *after)
}

func TestUpdateEpisodeDateResorts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	oldest := createEpisode(t, store, "Oldest", "2024-01-01")
	createEpisode(t, store, "Newest", "2024-03-01")

	date := mustDate(t, "2024-12-31")
	require.NoError(t, store.UpdateEpisode(ctx, oldest, entity.EpisodePatch{PublicationDate: &date}))

	episodes, err := store.GetEpisodes(ctx)
	require.NoError(t, err)
	require.Equal(t, "Oldest", episodes[0].Title)
	require.Equal(t, "Newest", episodes[1].Title)
}

func TestUpdateEpisodeNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	title := "Whatever"
	err := store.UpdateEpisode(ctx, uuid.NewString(), entity.EpisodePatch{Title: &title})
	require.ErrorIs(t, err, common.ErrEpisodeNotFound)
}

func TestDeleteEpisodeRemovesMetadataAndBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	keep := createEpisode(t, store, "Keep", "2024-03-01")
	doomed := createEpisode(t, store, "Doomed", "2024-01-01")
	doomedPath := store.AudioFilePath(doomed, entity.FormatMP3)

	require.NoError(t, store.DeleteEpisode(ctx, doomed))

	episodes, err := store.GetEpisodes(ctx)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	require.Equal(t, keep, episodes[0].GUID)

	exists, err := afero.Exists(store.fs, doomedPath)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = store.GetEpisode(ctx, doomed)
	require.ErrorIs(t, err, common.ErrEpisodeNotFound)
}

func TestDeleteEpisodeSurvivesMissingBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	guid := createEpisode(t, store, "Gone", "2024-01-01")
	require.NoError(t, store.fs.Remove(store.AudioFilePath(guid, entity.FormatMP3)))

	require.NoError(t, store.DeleteEpisode(ctx, guid))

	episodes, err := store.GetEpisodes(ctx)
	require.NoError(t, err)
	require.Empty(t, episodes)
}

func TestDeleteEpisodeNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	err := store.DeleteEpisode(ctx, uuid.NewString())
	require.ErrorIs(t, err, common.ErrEpisodeNotFound)
}

func TestGetEpisode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, testChannel()))

	guid := createEpisode(t, store, "Findable", "2024-02-02")

	ep, err := store.GetEpisode(ctx, guid)
	require.NoError(t, err)
	require.Equal(t, "Findable", ep.Title)
	require.Equal(t, guid, ep.GUID)

	_, err = store.GetEpisode(ctx, uuid.NewString())
	require.ErrorIs(t, err, common.ErrEpisodeNotFound)
}

// The on-disk document must stay readable by existing deployments: null
// for unset image and keywords, ISO dates, extension-form audio formats.
func TestPersistedDocumentSchema(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InitializeChannel(ctx, entity.Channel{
		Title:       "Tech Talk",
		Link:        "https://example.com",
		Description: "A show",
		Author:      "A. Person",
		Email:       "a@example.com",
		Language:    "en",
		Category:    "Comedy",
	}))
	guid := createEpisode(t, store, "Pilot", "2024-03-01")

	raw, err := afero.ReadFile(store.fs, "/data/podcast.json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	channel, ok := doc["channel"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Tech Talk", channel["title"])
	require.Equal(t, false, channel["explicit"])
	require.Nil(t, channel["image"])
	require.Nil(t, channel["keywords"])

	episodes, ok := doc["episodes"].([]any)
	require.True(t, ok)
	require.Len(t, episodes, 1)

	episode, ok := episodes[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, guid, episode["guid"])
	require.Equal(t, "2024-03-01", episode["publication_date"])
	require.Equal(t, "mp3", episode["audio_format"])
	require.Equal(t, float64(600), episode["duration"])
}
