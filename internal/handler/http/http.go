package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"opp/internal/service/visitor"
)

// PodcastService is the slice of the visitor use case the handlers
// consume.
type PodcastService interface {
	PodcastData(ctx context.Context) (*visitor.PodcastData, error)
	Episode(ctx context.Context, guid string) (*visitor.EpisodeData, error)
}

// NewPodcastHandler serves the full visitor snapshot as JSON.
func NewPodcastHandler(srv PodcastService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "PodcastHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		data, err := srv.PodcastData(r.Context())
		if err != nil {
			log.Error("Cannot get podcast data", slog.Any("error", err))
			http.Error(w, "Cannot get podcast data", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// NewEpisodeHandler serves the audio blob for a single episode. Blobs are
// read through the datastore's filesystem, never the OS directly.
func NewEpisodeHandler(fs afero.Fs, srv PodcastService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "EpisodeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		guid := r.PathValue("guid")
		if _, err := uuid.Parse(guid); err != nil {
			http.Error(w, "Invalid episode id", http.StatusBadRequest)

			return
		}

		ep, err := srv.Episode(r.Context(), guid)
		if err != nil {
			log.Error("Cannot get episode", slog.String("guid", guid), slog.Any("error", err))
			http.Error(w, "Cannot get episode", http.StatusInternalServerError)

			return
		}

		if ep == nil {
			http.Error(w, "Episode not found", http.StatusNotFound)

			return
		}

		f, err := fs.Open(ep.Path)
		if err != nil {
			log.Error("Audio blob missing", slog.String("guid", guid), slog.String("path", ep.Path))
			http.Error(w, "Episode not found", http.StatusNotFound)

			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			log.Error("Cannot stat audio blob", slog.String("guid", guid), slog.Any("error", err))
			http.Error(w, "Cannot serve episode", http.StatusInternalServerError)

			return
		}

		log.Info("Serve episode", slog.String("guid", guid), slog.String("path", ep.Path))

		w.Header().Set("Content-Type", ep.AudioFormat.MimeType())
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
