package handlers

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/Brownie44l1/emotion-detector/internal/domain"
	"github.com/Brownie44l1/emotion-detector/internal/model"
)

//go:embed web/index.html
var indexHTML []byte

// EmotionService is what the handlers need from the service layer.
type EmotionService interface {
	DetectUpload(ctx context.Context, name, filename string, data []byte) (*domain.Prediction, error)
	DetectWebcam(ctx context.Context, name, dataURL string) (*domain.Prediction, error)
	ClassifyTensor(t *model.Tensor) (*model.Result, error)
	Latest(ctx context.Context) ([]domain.Prediction, error)
}

type Handler struct {
	service        EmotionService
	validate       *validator.Validate
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(service EmotionService, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:        service,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// PredictForm holds the non-file fields of POST /predict.
type PredictForm struct {
	Name   string `validate:"max=100"`
	Webcam string
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	Emotion   string `json:"emotion"`
	ImagePath string `json:"image_path"`
}

// TensorRequest is a preprocessed 48x48 grayscale image in row-major order.
type TensorRequest struct {
	Image []float32 `json:"image" validate:"required,len=2304,dive,gte=0,lte=1"`
}

// TensorResponse is returned by POST /predict/tensor.
type TensorResponse struct {
	Emotion     string             `json:"emotion"`
	Confidence  float32            `json:"confidence"`
	Predictions map[string]float32 `json:"predictions"`
}

// HistoryEntry is one row of GET /db_latest.
type HistoryEntry struct {
	Name      string    `json:"name"`
	ImagePath string    `json:"image_path"`
	Emotion   string    `json:"emotion"`
	Date      time.Time `json:"date"`
}

// Index GET / - upload and webcam capture page
func (h *Handler) Index(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

// Health GET /health
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Predict POST /predict - classify a multipart "file" or a "webcam" data URL
func (h *Handler) Predict(c *fiber.Ctx) error {
	form := PredictForm{
		Name:   strings.TrimSpace(c.FormValue("name")),
		Webcam: c.FormValue("webcam"),
	}
	if err := h.validate.Struct(form); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	var (
		prediction *domain.Prediction
		err        error
	)
	if file, fileErr := c.FormFile("file"); fileErr == nil {
		h.logger.Debug("received file",
			slog.String("filename", file.Filename),
			slog.Int64("size", file.Size),
		)

		data, readErr := h.readUpload(file)
		if readErr != nil {
			return readErr
		}
		prediction, err = h.service.DetectUpload(c.Context(), form.Name, file.Filename, data)
	} else if strings.TrimSpace(form.Webcam) != "" {
		prediction, err = h.service.DetectWebcam(c.Context(), form.Name, form.Webcam)
	} else {
		return domain.ErrNoImage
	}
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	return c.JSON(PredictResponse{
		Emotion:   prediction.Emotion,
		ImagePath: prediction.ImagePath,
	})
}

// PredictTensor POST /predict/tensor - classify a preprocessed tensor, nothing is stored
func (h *Handler) PredictTensor(c *fiber.Ctx) error {
	var req TensorRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("expected %d values in [0, 1], got %d: %w", model.TensorSize, len(req.Image), err))
	}

	var tensor model.Tensor
	copy(tensor[:], req.Image)

	result, err := h.service.ClassifyTensor(&tensor)
	if err != nil {
		return err
	}

	return c.JSON(TensorResponse{
		Emotion:     string(result.Label),
		Confidence:  result.Confidence,
		Predictions: result.Predictions,
	})
}

// Latest GET /db_latest - most recent predictions, newest first
func (h *Handler) Latest(c *fiber.Ctx) error {
	predictions, err := h.service.Latest(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(lo.Map(predictions, func(p domain.Prediction, _ int) HistoryEntry {
		return HistoryEntry{
			Name:      p.Name,
			ImagePath: p.ImagePath,
			Emotion:   p.Emotion,
			Date:      p.CreatedAt,
		}
	}))
}

// readUpload reads an uploaded file, enforcing the size limit.
func (h *Handler) readUpload(file *multipart.FileHeader) ([]byte, error) {
	if file.Size == 0 {
		return nil, domain.ErrNoImage
	}
	if file.Size > h.maxUploadBytes {
		return nil, domain.ErrImageTooLarge.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, domain.ErrImageTooLarge.WithError(nil)
	}
	return data, nil
}
