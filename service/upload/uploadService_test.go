package upload

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SenyaGur/ukrlibrary/model"
	"github.com/SenyaGur/ukrlibrary/util/apperrors"
	"github.com/SenyaGur/ukrlibrary/util/blob"
)

type mediaMock struct {
	added []model.BookMedia
}

func (m *mediaMock) AddMedia(ctx context.Context, bookID, fileURL, fileType string) (*model.BookMedia, error) {
	bm := model.BookMedia{ID: "m1", BookID: bookID, FileURL: fileURL, FileType: fileType}
	m.added = append(m.added, bm)
	return &bm, nil
}

func newTestService(m *mediaMock) Service {
	return New(blob.NewMemory(), m, slog.New(slog.DiscardHandler))
}

func TestCover(t *testing.T) {
	svc := newTestService(&mediaMock{})

	res, err := svc.Cover(context.Background(), "обкладинка.PNG", strings.NewReader("img"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.Key, "book-covers/"))
	require.True(t, strings.HasSuffix(res.Key, ".png"))
	require.Equal(t, "/uploads/"+res.Key, res.URL)

	info, rc, err := svc.Serve(context.Background(), res.Key)
	require.NoError(t, err)
	defer rc.Close()
	require.Equal(t, int64(3), info.Size)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "img", string(body))
}

func TestCover_RejectsNonImage(t *testing.T) {
	svc := newTestService(&mediaMock{})

	_, err := svc.Cover(context.Background(), "video.mp4", strings.NewReader("x"))
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestMedia_AttachesToBook(t *testing.T) {
	m := &mediaMock{}
	svc := newTestService(m)

	res, err := svc.Media(context.Background(), "trailer.mp4", "b1", strings.NewReader("x"))
	require.NoError(t, err)
	require.NotNil(t, res.Media)
	require.Len(t, m.added, 1)
	require.Equal(t, "b1", m.added[0].BookID)
	require.Equal(t, "video", m.added[0].FileType)
}

func TestMedia_NoBook(t *testing.T) {
	m := &mediaMock{}
	svc := newTestService(m)

	res, err := svc.Media(context.Background(), "scan.pdf", "", strings.NewReader("x"))
	require.NoError(t, err)
	require.Nil(t, res.Media)
	require.Empty(t, m.added)
}

func TestServe_Unknown(t *testing.T) {
	svc := newTestService(&mediaMock{})

	_, _, err := svc.Serve(context.Background(), "book-covers/missing.png")
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
