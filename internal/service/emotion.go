package service

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/Brownie44l1/emotion-detector/internal/domain"
	"github.com/Brownie44l1/emotion-detector/internal/imageio"
	"github.com/Brownie44l1/emotion-detector/internal/model"
	"github.com/Brownie44l1/emotion-detector/internal/preprocess"
)

// PredictionRepository persists classification results.
type PredictionRepository interface {
	Create(ctx context.Context, p *domain.Prediction) error
	Latest(ctx context.Context, limit int) ([]domain.Prediction, error)
}

// ImageStore keeps the images that were classified.
type ImageStore interface {
	SaveUpload(filename string, data []byte) (string, error)
	SaveWebcam(img image.Image, at time.Time) (string, error)
}

// EmotionService classifies face images and records the outcome.
type EmotionService struct {
	classifier   model.Classifier
	repo         PredictionRepository
	images       ImageStore
	historyLimit int
	logger       *slog.Logger
	now          func() time.Time
}

// NewEmotionService takes the classifier chosen at startup; it is shared by
// every request and never replaced.
func NewEmotionService(
	classifier model.Classifier,
	repo PredictionRepository,
	images ImageStore,
	historyLimit int,
	logger *slog.Logger,
) *EmotionService {
	return &EmotionService{
		classifier:   classifier,
		repo:         repo,
		images:       images,
		historyLimit: historyLimit,
		logger:       logger,
		now:          time.Now,
	}
}

// DetectUpload classifies an uploaded file and stores it under its sanitized name.
func (s *EmotionService) DetectUpload(ctx context.Context, name, filename string, data []byte) (*domain.Prediction, error) {
	img, _, err := imageio.Decode(data)
	if err != nil {
		return nil, err
	}

	result, err := s.ClassifyImage(img)
	if err != nil {
		return nil, err
	}

	path, err := s.images.SaveUpload(filename, data)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	return s.record(ctx, name, path, result)
}

// DetectWebcam classifies a base64 data URL captured by the browser and stores
// the frame as PNG.
func (s *EmotionService) DetectWebcam(ctx context.Context, name, dataURL string) (*domain.Prediction, error) {
	data, err := imageio.DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}

	img, _, err := imageio.Decode(data)
	if err != nil {
		return nil, err
	}

	result, err := s.ClassifyImage(img)
	if err != nil {
		return nil, err
	}

	path, err := s.images.SaveWebcam(img, s.now())
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	return s.record(ctx, name, path, result)
}

// ClassifyImage preprocesses img and runs the classifier on it.
func (s *EmotionService) ClassifyImage(img image.Image) (*model.Result, error) {
	return s.ClassifyTensor(preprocess.Preprocess(img))
}

// ClassifyTensor runs the classifier on an already preprocessed tensor.
func (s *EmotionService) ClassifyTensor(t *model.Tensor) (*model.Result, error) {
	result, err := model.Classify(s.classifier, t)
	if err != nil {
		return nil, domain.ErrInternal.WithError(fmt.Errorf("classify: %w", err))
	}
	return result, nil
}

// Latest returns the most recent predictions, newest first.
func (s *EmotionService) Latest(ctx context.Context) ([]domain.Prediction, error) {
	predictions, err := s.repo.Latest(ctx, s.historyLimit)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	return predictions, nil
}

func (s *EmotionService) record(ctx context.Context, name, path string, result *model.Result) (*domain.Prediction, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultName
	}

	p := &domain.Prediction{
		Name:      name,
		ImagePath: path,
		Emotion:   string(result.Label),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	s.logger.Debug("prediction recorded",
		slog.Int64("id", p.ID),
		slog.String("emotion", p.Emotion),
		slog.String("image_path", p.ImagePath),
	)
	return p, nil
}
