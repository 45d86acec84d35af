package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/emotion-detector/internal/domain"
	"github.com/Brownie44l1/emotion-detector/internal/model"
)

type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPredictionRepository) Latest(ctx context.Context, limit int) ([]domain.Prediction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Prediction), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) SaveUpload(filename string, data []byte) (string, error) {
	args := m.Called(filename, data)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) SaveWebcam(img image.Image, at time.Time) (string, error) {
	args := m.Called(img, at)
	return args.String(0), args.Error(1)
}

type failingClassifier struct{}

func (failingClassifier) Predict(*model.Tensor) (model.Probabilities, error) {
	return model.Probabilities{}, errors.New("session run failed")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uniformPNG(t *testing.T, v uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEmotionService_DetectUpload(t *testing.T) {
	white := uniformPNG(t, 255)
	black := uniformPNG(t, 0)

	tests := []struct {
		name        string
		personName  string
		data        []byte
		classifier  model.Classifier
		setupMocks  func(repo *MockPredictionRepository, store *MockImageStore, data []byte)
		wantName    string
		wantEmotion string
		wantErr     error
	}{
		{
			name:       "white image is Happy",
			personName: "Ada",
			data:       white,
			classifier: model.NewHeuristic(),
			setupMocks: func(repo *MockPredictionRepository, store *MockImageStore, data []byte) {
				store.On("SaveUpload", "face.png", data).Return("static/uploads/0000aaaa_face.png", nil)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Prediction) bool {
					return p.Name == "Ada" && p.Emotion == "Happy" && p.ImagePath == "static/uploads/0000aaaa_face.png"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Prediction).ID = 7
				}).Return(nil)
			},
			wantName:    "Ada",
			wantEmotion: "Happy",
		},
		{
			name:       "black image resolves tie to Angry and defaults the name",
			personName: "   ",
			data:       black,
			classifier: model.NewHeuristic(),
			setupMocks: func(repo *MockPredictionRepository, store *MockImageStore, data []byte) {
				store.On("SaveUpload", "face.png", data).Return("static/uploads/0000bbbb_face.png", nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Prediction")).Return(nil)
			},
			wantName:    domain.DefaultName,
			wantEmotion: "Angry",
		},
		{
			name:       "not an image",
			data:       []byte("hello"),
			classifier: model.NewHeuristic(),
			setupMocks: func(*MockPredictionRepository, *MockImageStore, []byte) {},
			wantErr:    domain.ErrUnsupportedImage,
		},
		{
			name:       "classifier failure",
			data:       white,
			classifier: failingClassifier{},
			setupMocks: func(*MockPredictionRepository, *MockImageStore, []byte) {},
			wantErr:    domain.ErrInternal,
		},
		{
			name:       "store failure",
			data:       white,
			classifier: model.NewHeuristic(),
			setupMocks: func(repo *MockPredictionRepository, store *MockImageStore, data []byte) {
				store.On("SaveUpload", "face.png", data).Return("", errors.New("disk full"))
			},
			wantErr: domain.ErrInternal,
		},
		{
			name:       "repository failure",
			data:       white,
			classifier: model.NewHeuristic(),
			setupMocks: func(repo *MockPredictionRepository, store *MockImageStore, data []byte) {
				store.On("SaveUpload", "face.png", data).Return("static/uploads/x_face.png", nil)
				repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
			},
			wantErr: domain.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPredictionRepository)
			store := new(MockImageStore)
			tt.setupMocks(repo, store, tt.data)

			svc := NewEmotionService(tt.classifier, repo, store, 10, testLogger())
			got, err := svc.DetectUpload(context.Background(), tt.personName, "face.png", tt.data)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, got.Name)
				assert.Equal(t, tt.wantEmotion, got.Emotion)
			}

			repo.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestEmotionService_DetectWebcam(t *testing.T) {
	capturedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(uniformPNG(t, 255))

	repo := new(MockPredictionRepository)
	store := new(MockImageStore)
	store.On("SaveWebcam", mock.Anything, capturedAt).Return("static/uploads/webcam_20240102030405_ab.png", nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Prediction")).Return(nil)

	svc := NewEmotionService(model.NewHeuristic(), repo, store, 10, testLogger())
	svc.now = func() time.Time { return capturedAt }

	got, err := svc.DetectWebcam(context.Background(), "Cam", dataURL)
	require.NoError(t, err)
	assert.Equal(t, "Happy", got.Emotion)
	assert.Equal(t, "static/uploads/webcam_20240102030405_ab.png", got.ImagePath)

	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestEmotionService_DetectWebcam_BadPayload(t *testing.T) {
	repo := new(MockPredictionRepository)
	store := new(MockImageStore)
	svc := NewEmotionService(model.NewHeuristic(), repo, store, 10, testLogger())

	_, err := svc.DetectWebcam(context.Background(), "", "data:image/png;base64,%%%")
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	_, err = svc.DetectWebcam(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrNoImage)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEmotionService_ClassifyTensor(t *testing.T) {
	svc := NewEmotionService(model.NewHeuristic(), nil, nil, 10, testLogger())

	var tensor model.Tensor
	for i := range tensor {
		tensor[i] = 1
	}
	result, err := svc.ClassifyTensor(&tensor)
	require.NoError(t, err)
	assert.Equal(t, model.Happy, result.Label)
	assert.Equal(t, float32(0.85), result.Confidence)
}

func TestEmotionService_Latest(t *testing.T) {
	rows := []domain.Prediction{{ID: 3, Name: "Ada", Emotion: "Sad"}}

	repo := new(MockPredictionRepository)
	repo.On("Latest", mock.Anything, 10).Return(rows, nil).Once()
	repo.On("Latest", mock.Anything, 10).Return(nil, errors.New("timeout")).Once()

	svc := NewEmotionService(model.NewHeuristic(), repo, nil, 10, testLogger())

	got, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = svc.Latest(context.Background())
	assert.ErrorIs(t, err, domain.ErrInternal)

	repo.AssertExpectations(t)
}
