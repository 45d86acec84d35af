package domain

import "time"

// DefaultName is recorded when the caller leaves the name empty.
const DefaultName = "Anonymous"

// Prediction is one classified image. Rows are only ever appended.
type Prediction struct {
	ID        int64
	Name      string
	ImagePath string
	Emotion   string
	CreatedAt time.Time
}
