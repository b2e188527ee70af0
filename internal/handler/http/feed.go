package httphandler

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"

	"opp/internal/service/visitor"
)

const rfc822 = "Mon, 02 Jan 2006 15:04:05 -0700"

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssItem struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	GUID        rssGUID      `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
	Duration    int          `xml:"itunes:duration"`
	Enclosure   rssEnclosure `xml:"enclosure"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssCategory struct {
	Text string `xml:"text,attr"`
}

type rssOwner struct {
	Name  string `xml:"itunes:name"`
	Email string `xml:"itunes:email"`
}

type rssChannel struct {
	Title       string       `xml:"title"`
	Link        string       `xml:"link"`
	Description string       `xml:"description"`
	Language    string       `xml:"language"`
	Category    *rssCategory `xml:"itunes:category,omitempty"`
	Author      string       `xml:"itunes:author,omitempty"`
	Owner       *rssOwner    `xml:"itunes:owner,omitempty"`
	Explicit    string       `xml:"itunes:explicit"`
	Keywords    string       `xml:"itunes:keywords,omitempty"`
	Image       *rssImage    `xml:"image,omitempty"`
	Items       []rssItem    `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	ITunes  string     `xml:"xmlns:itunes,attr"`
	Channel rssChannel `xml:"channel"`
}

// NewFeedHandler renders the RSS feed from a fresh visitor snapshot.
// The enclosure URLs point back at the episode download handler;
// enclosure lengths come from the datastore's filesystem.
func NewFeedHandler(siteURL string, fs afero.Fs, srv PodcastService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "FeedHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		data, err := srv.PodcastData(r.Context())
		if err != nil {
			log.Error("Cannot get podcast data", slog.Any("error", err))
			http.Error(w, "Cannot build feed", http.StatusInternalServerError)

			return
		}

		feed := buildFeed(siteURL, fs, data)

		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		w.Write([]byte(xml.Header))
		if err := xml.NewEncoder(w).Encode(feed); err != nil {
			log.Error("Cannot encode feed", slog.Any("error", err))
		}
	}
}

func buildFeed(siteURL string, fs afero.Fs, data *visitor.PodcastData) *rssFeed {
	ch := rssChannel{
		Title:       data.Channel.Title,
		Link:        data.Channel.Link,
		Description: data.Channel.Description,
		Language:    data.Channel.Language,
		Author:      data.Channel.Author,
		Explicit:    explicitValue(data.Channel.Explicit),
		Keywords:    joinKeywords(data.Channel.Keywords),
	}

	if data.Channel.Category != "" {
		ch.Category = &rssCategory{Text: data.Channel.Category}
	}

	if data.Channel.Email != "" {
		ch.Owner = &rssOwner{
			Name:  data.Channel.Author,
			Email: data.Channel.Email,
		}
	}

	if data.Channel.Image != "" {
		ch.Image = &rssImage{
			URL:   data.Channel.Image,
			Title: data.Channel.Title,
			Link:  data.Channel.Link,
		}
	}

	for _, ep := range data.Episodes {
		item := rssItem{
			Title:       ep.Title,
			Description: ep.Description,
			GUID:        rssGUID{IsPermaLink: false, Value: ep.GUID},
			PubDate:     pubDate(ep.PublicationDate),
			Duration:    ep.Duration,
			Enclosure: rssEnclosure{
				URL:    fmt.Sprintf("%s/episode/%s", siteURL, ep.GUID),
				Length: blobLength(fs, ep.Path),
				Type:   ep.AudioFormat.MimeType(),
			},
		}

		ch.Items = append(ch.Items, item)
	}

	return &rssFeed{
		Version: "2.0",
		ITunes:  "http://www.itunes.com/dtds/podcast-1.0.dtd",
		Channel: ch,
	}
}

func pubDate(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}

	return t.UTC().Format(rfc822)
}

func blobLength(fs afero.Fs, path string) int64 {
	info, err := fs.Stat(path)
	if err != nil {
		return 0
	}

	return info.Size()
}

func explicitValue(explicit bool) string {
	if explicit {
		return "yes"
	}

	return "no"
}

func joinKeywords(keywords []string) string {
	return strings.Join(keywords, ",")
}
