package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/emotion-detector/internal/domain"
	"github.com/Brownie44l1/emotion-detector/internal/model"
)

type stubService struct {
	latest []domain.Prediction
}

func (s *stubService) DetectUpload(context.Context, string, string, []byte) (*domain.Prediction, error) {
	return nil, domain.ErrInvalidImage
}

func (s *stubService) DetectWebcam(context.Context, string, string) (*domain.Prediction, error) {
	return nil, domain.ErrInvalidImage
}

func (s *stubService) ClassifyTensor(t *model.Tensor) (*model.Result, error) {
	return model.Classify(model.NewHeuristic(), t)
}

func (s *stubService) Latest(context.Context) ([]domain.Prediction, error) {
	return s.latest, nil
}

func newTestRouter(t *testing.T) (*Router, string) {
	t.Helper()
	dir := t.TempDir()
	router := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), Dependencies{
		Service:        &stubService{},
		UploadDir:      dir,
		MaxUploadBytes: 1 << 20,
	})
	router.Setup()
	return router, dir
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	resp, err := router.App().Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_ServesUploads(t *testing.T) {
	router, dir := newTestRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc_face.jpg"), []byte("stored"), 0o644))

	resp, err := router.App().Test(httptest.NewRequest("GET", UploadsRoute+"/abc_face.jpg", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "stored", string(body))
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	resp, err := router.App().Test(httptest.NewRequest("GET", "/nope", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 404, resp.StatusCode)

	var body map[string]map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "HTTP_ERROR", body["error"]["code"])
}

func TestRouter_PredictWithoutImage(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/predict", nil)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := router.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 400, resp.StatusCode)
}
