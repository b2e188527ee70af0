package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"opp/internal/common"
	"opp/internal/entity"
)

const (
	documentFileName = "podcast.json"
	lockFileName     = ".opp.lock"
)

// Store keeps the whole podcast in one JSON document plus one audio blob
// per episode, all inside a single directory it owns exclusively. Every
// mutation rewrites the whole document; there is no journal and a crash
// mid-write can corrupt it. One Store instance assumes single-writer
// discipline, serialized by an in-process mutex and, on a real
// filesystem, an advisory file lock against other processes.
type Store struct {
	fs   afero.Fs
	dir  string
	lock *flock.Flock // nil when the backing filesystem is not the OS one
	log  *slog.Logger

	mu sync.RWMutex
}

// New binds a store to a directory on the OS filesystem, creating it if
// needed.
func New(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create datastore directory: %w", err)
	}

	s := newStore(afero.NewOsFs(), dir, log)
	s.lock = flock.New(filepath.Join(dir, lockFileName))

	return s, nil
}

// NewWithFS binds a store to a directory on an arbitrary filesystem.
// Cross-process locking is skipped; tests run this over afero.MemMapFs.
func NewWithFS(fs afero.Fs, dir string, log *slog.Logger) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create datastore directory: %w", err)
	}

	return newStore(fs, dir, log), nil
}

func newStore(fs afero.Fs, dir string, log *slog.Logger) *Store {
	return &Store{
		fs:  fs,
		dir: dir,
		log: log.With(slog.String("item", "JSONStore"), slog.String("dir", dir)),
	}
}

// AudioFilePath derives the blob location for an episode. It is the
// single source of truth for blob naming, shared by create and delete.
func (s *Store) AudioFilePath(guid string, format entity.AudioFormat) string {
	return filepath.Join(s.dir, guid+"."+format.Extension())
}

// Fs exposes the backing filesystem so blob readers stay on the same
// abstraction the store writes through.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

func (s *Store) InitializeChannel(ctx context.Context, ch entity.Channel) error {
	return s.withWriteLock(func() error {
		if s.documentExists() {
			return common.ErrChannelAlreadyInitialized
		}

		doc := &document{
			Channel:  channelToDocument(ch),
			Episodes: []episodeDocument{},
		}

		if err := s.saveDocument(doc); err != nil {
			return err
		}

		s.log.Info("Channel initialized", slog.String("title", ch.Title))

		return nil
	})
}

func (s *Store) GetChannel(ctx context.Context) (*entity.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.loadDocument()
	if err != nil {
		return nil, err
	}

	ch := doc.Channel.toChannel()

	return &ch, nil
}

func (s *Store) UpdateChannel(ctx context.Context, patch entity.ChannelPatch) error {
	return s.withWriteLock(func() error {
		doc, err := s.loadDocument()
		if err != nil {
			return err
		}

		doc.Channel = channelToDocument(patch.Apply(doc.Channel.toChannel()))

		return s.saveDocument(doc)
	})
}

// CreateEpisode assigns a fresh GUID, stores the audio blob fully before
// recording metadata, inserts the episode into the sorted collection and
// produces the new GUID.
func (s *Store) CreateEpisode(ctx context.Context, ep entity.Episode, audio io.Reader) (string, error) {
	var guid string

	err := s.withWriteLock(func() error {
		doc, err := s.loadDocument()
		if err != nil {
			return err
		}

		guid = uuid.NewString()
		ep.GUID = guid
		ep.Path = s.AudioFilePath(guid, ep.AudioFormat)

		if err := s.writeBlob(ep.Path, audio); err != nil {
			return err
		}

		doc.Episodes = append(doc.Episodes, episodeToDocument(ep))
		sortEpisodes(doc.Episodes)

		if err := s.saveDocument(doc); err != nil {
			// Do not leave an orphan blob behind a failed metadata write.
			_ = s.fs.Remove(ep.Path)

			return err
		}

		s.log.Info("Episode created", slog.String("guid", guid), slog.String("title", ep.Title))

		return nil
	})
	if err != nil {
		return "", err
	}

	return guid, nil
}

func (s *Store) GetEpisodes(ctx context.Context) ([]*entity.Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.loadDocument()
	if err != nil {
		return nil, err
	}

	episodes := make([]*entity.Episode, 0, len(doc.Episodes))
	for _, epDoc := range doc.Episodes {
		ep, err := s.toEpisode(epDoc)
		if err != nil {
			return nil, fmt.Errorf("corrupt episode %s: %w", epDoc.GUID, err)
		}

		episodes = append(episodes, ep)
	}

	return episodes, nil
}

func (s *Store) GetEpisode(ctx context.Context, guid string) (*entity.Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.loadDocument()
	if err != nil {
		return nil, err
	}

	for _, epDoc := range doc.Episodes {
		if epDoc.GUID == guid {
			return s.toEpisode(epDoc)
		}
	}

	return nil, common.ErrEpisodeNotFound
}

func (s *Store) UpdateEpisode(ctx context.Context, guid string, patch entity.EpisodePatch) error {
	return s.withWriteLock(func() error {
		doc, err := s.loadDocument()
		if err != nil {
			return err
		}

		i := findEpisode(doc.Episodes, guid)
		if i < 0 {
			return common.ErrEpisodeNotFound
		}

		ep, err := s.toEpisode(doc.Episodes[i])
		if err != nil {
			return fmt.Errorf("corrupt episode %s: %w", guid, err)
		}

		updated, dateChanged := patch.Apply(*ep)
		doc.Episodes[i] = episodeToDocument(updated)

		if dateChanged {
			sortEpisodes(doc.Episodes)
		}

		return s.saveDocument(doc)
	})
}

// DeleteEpisode removes the episode metadata and its audio blob. A blob
// that is already gone does not block the metadata deletion; it is only
// logged.
func (s *Store) DeleteEpisode(ctx context.Context, guid string) error {
	return s.withWriteLock(func() error {
		doc, err := s.loadDocument()
		if err != nil {
			return err
		}

		i := findEpisode(doc.Episodes, guid)
		if i < 0 {
			return common.ErrEpisodeNotFound
		}

		format, err := entity.ParseAudioFormat(doc.Episodes[i].AudioFormat)
		if err != nil {
			return fmt.Errorf("corrupt episode %s: %w", guid, err)
		}
		blobPath := s.AudioFilePath(guid, format)

		doc.Episodes = append(doc.Episodes[:i], doc.Episodes[i+1:]...)

		if err := s.saveDocument(doc); err != nil {
			return err
		}

		if err := s.fs.Remove(blobPath); err != nil {
			if os.IsNotExist(err) {
				s.log.Warn("Audio blob already missing", slog.String("guid", guid), slog.String("path", blobPath))
			} else {
				s.log.Error("Cannot remove audio blob", slog.String("guid", guid), slog.String("path", blobPath), slog.Any("error", err))
			}
		}

		s.log.Info("Episode deleted", slog.String("guid", guid))

		return nil
	})
}

func (s *Store) withWriteLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock != nil {
		if err := s.lock.Lock(); err != nil {
			return fmt.Errorf("cannot acquire datastore lock: %w", err)
		}
		defer s.lock.Unlock()
	}

	return fn()
}

func (s *Store) documentPath() string {
	return filepath.Join(s.dir, documentFileName)
}

func (s *Store) documentExists() bool {
	_, err := s.fs.Stat(s.documentPath())

	return err == nil
}

func (s *Store) loadDocument() (*document, error) {
	data, err := afero.ReadFile(s.fs, s.documentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrChannelNotInitialized
		}

		return nil, fmt.Errorf("cannot read datastore document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot decode datastore document: %w", err)
	}

	if doc.Channel == nil {
		return nil, common.ErrChannelNotInitialized
	}

	return &doc, nil
}

func (s *Store) saveDocument(doc *document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cannot encode datastore document: %w", err)
	}

	if err := afero.WriteFile(s.fs, s.documentPath(), data, 0o644); err != nil {
		return fmt.Errorf("cannot write datastore document: %w", err)
	}

	return nil
}

// writeBlob stores the audio bytes and flushes them before the caller
// records any metadata referencing the blob.
func (s *Store) writeBlob(path string, audio io.Reader) error {
	f, err := s.fs.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create audio blob: %w", err)
	}

	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		_ = s.fs.Remove(path)

		return fmt.Errorf("cannot write audio blob: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()

		return fmt.Errorf("cannot flush audio blob: %w", err)
	}

	return f.Close()
}

// sortEpisodes orders episodes newest first. ISO dates compare
// lexicographically, and the stable sort keeps insertion order among
// episodes sharing a date.
func sortEpisodes(episodes []episodeDocument) {
	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].PublicationDate > episodes[j].PublicationDate
	})
}

func findEpisode(episodes []episodeDocument, guid string) int {
	for i := range episodes {
		if episodes[i].GUID == guid {
			return i
		}
	}

	return -1
}
