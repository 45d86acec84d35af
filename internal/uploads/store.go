// Package uploads saves classified images so history entries can link to them.
package uploads

import (
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^0-9a-zA-Z._-]`)

// SanitizeFilename replaces every character outside [0-9A-Za-z._-] with an
// underscore. Leading dots are replaced too so a name cannot be hidden or
// climb directories.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		return "upload"
	}
	return name
}

// Store writes files into Dir and reports them under PublicPrefix.
type Store struct {
	Dir          string
	PublicPrefix string
}

// NewStore creates dir if needed. Saved files are addressed as
// "<publicPrefix>/<file name>".
func NewStore(dir, publicPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{Dir: dir, PublicPrefix: strings.TrimSuffix(publicPrefix, "/")}, nil
}

// SaveUpload writes data unchanged under a unique, sanitized name.
func (s *Store) SaveUpload(filename string, data []byte) (string, error) {
	name := shortID() + "_" + SanitizeFilename(filename)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return s.public(name), nil
}

// SaveWebcam encodes a captured frame as PNG named after its capture time.
func (s *Store) SaveWebcam(img image.Image, at time.Time) (string, error) {
	name := fmt.Sprintf("webcam_%s_%s.png", at.Format("20060102150405"), shortID())
	if err := imaging.Save(img, filepath.Join(s.Dir, name)); err != nil {
		return "", fmt.Errorf("save webcam capture: %w", err)
	}
	return s.public(name), nil
}

func (s *Store) public(name string) string {
	if s.PublicPrefix == "" {
		return name
	}
	return path.Join(s.PublicPrefix, name)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
