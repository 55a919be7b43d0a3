// Package upload stores book covers and media files and serves them back
// under /uploads/*.
package upload

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
	"github.com/SenyaGur/ukrlibrary/util/blob"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

var mediaExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".mp4": true, ".mp3": true, ".pdf": true,
}

// MediaRepo attaches an uploaded file to a book's media gallery.
type MediaRepo interface {
	AddMedia(ctx context.Context, bookID, fileURL, fileType string) (*model.BookMedia, error)
}

type Result struct {
	URL   string           `json:"url"`
	Key   string           `json:"key"`
	Media *model.BookMedia `json:"media,omitempty"`
}

type Service interface {
	// Cover stores a book cover image and returns its public URL.
	Cover(ctx context.Context, filename string, r io.Reader) (*Result, error)

	// Media stores a gallery file; with a non-empty bookID it also appends a
	// book_media row at the next display order.
	Media(ctx context.Context, filename, bookID string, r io.Reader) (*Result, error)

	// Serve streams a previously stored object by key.
	Serve(ctx context.Context, key string) (blob.Info, io.ReadCloser, error)
}

type service struct {
	store blob.Store
	media MediaRepo
	log   *slog.Logger
}

func New(store blob.Store, media MediaRepo, log *slog.Logger) Service {
	return &service{store: store, media: media, log: log}
}

func (s *service) Cover(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	ext, err := checkExt(filename, imageExts)
	if err != nil {
		return nil, err
	}
	key := "book-covers/" + uuid.NewString() + ext
	return s.put(ctx, key, ext, r)
}

func (s *service) Media(ctx context.Context, filename, bookID string, r io.Reader) (*Result, error) {
	ext, err := checkExt(filename, mediaExts)
	if err != nil {
		return nil, err
	}
	key := "book-media/" + uuid.NewString() + ext
	res, err := s.put(ctx, key, ext, r)
	if err != nil {
		return nil, err
	}
	if bookID != "" {
		m, err := s.media.AddMedia(ctx, bookID, res.URL, fileType(ext))
		if err != nil {
			return nil, err
		}
		res.Media = m
	}
	return res, nil
}

func (s *service) put(ctx context.Context, key, ext string, r io.Reader) (*Result, error) {
	info, err := s.store.Put(ctx, key, r, mime.TypeByExtension(ext))
	if err != nil {
		return nil, err
	}
	s.log.Info("file uploaded", "key", info.Key, "size_bytes", info.Size)
	return &Result{URL: "/uploads/" + info.Key, Key: info.Key}, nil
}

func (s *service) Serve(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	info, rc, err := s.store.Get(ctx, key)
	if err == blob.ErrNotFound {
		return blob.Info{}, nil, apperrors.NotFound("file")
	}
	return info, rc, err
}

func checkExt(filename string, allowed map[string]bool) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowed[ext] {
		return "", apperrors.Validation("file type " + ext + " is not allowed")
	}
	return ext, nil
}

func fileType(ext string) string {
	switch ext {
	case ".mp4":
		return "video"
	case ".mp3":
		return "audio"
	case ".pdf":
		return "document"
	default:
		return "image"
	}
}
