package httphandler

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"opp/internal/service/visitor"
)

//go:embed templates/home.html
var homeTemplateContent []byte

type homePage struct {
	Channel     visitor.ChannelData
	Description template.HTML
	FeedURL     string
	Episodes    []homeEpisode
}

type homeEpisode struct {
	Title           string
	Description     template.HTML
	PublicationDate string
	Duration        string
	AudioURL        string
	MimeType        string
}

// NewHomeHandler renders the podcast landing page. Channel and episode
// descriptions are markdown, converted with goldmark.
func NewHomeHandler(siteURL string, srv PodcastService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "HomeHandler"))

	tmpl := template.Must(template.New("home").Parse(string(homeTemplateContent)))
	md := goldmark.New(
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	renderMarkdown := func(src string) template.HTML {
		var buf bytes.Buffer
		if err := md.Convert([]byte(src), &buf); err != nil {
			log.Error("Cannot render markdown", slog.Any("error", err))

			return template.HTML(template.HTMLEscapeString(src))
		}

		return template.HTML(buf.String())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data, err := srv.PodcastData(r.Context())
		if err != nil {
			log.Error("Cannot get podcast data", slog.Any("error", err))
			http.Error(w, "Cannot get podcast data", http.StatusInternalServerError)

			return
		}

		page := homePage{
			Channel:     data.Channel,
			Description: renderMarkdown(data.Channel.Description),
			FeedURL:     siteURL + "/podcast.xml",
		}

		for _, ep := range data.Episodes {
			page.Episodes = append(page.Episodes, homeEpisode{
				Title:           ep.Title,
				Description:     renderMarkdown(ep.Description),
				PublicationDate: ep.PublicationDate,
				Duration:        formatDuration(ep.Duration),
				AudioURL:        fmt.Sprintf("%s/episode/%s", siteURL, ep.GUID),
				MimeType:        ep.AudioFormat.MimeType(),
			})
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, page); err != nil {
			log.Error("Cannot render home page", slog.Any("error", err))
			http.Error(w, "Cannot render page", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

// formatDuration renders seconds as [hh:]mm:ss, or plain seconds below a
// minute.
func formatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}

	if minutes > 0 {
		return fmt.Sprintf("%02d:%02d", minutes, secs)
	}

	return fmt.Sprintf("%02d", secs)
}
