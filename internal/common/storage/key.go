package storage

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// defaultExtension is applied when the original filename carries none.
const defaultExtension = ".pdf"

// NewKey generates a collision-resistant blob key: a creation-date partition
// segment, a random unique token, and the original file extension. The date
// partition keeps directory/prefix fan-out manageable; the uuid avoids
// cross-upload collisions without coordination.
func NewKey(originalName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(originalName))
	if ext == "" || ext == "." {
		ext = defaultExtension
	}
	folder := now.UTC().Format("2006-01-02")
	return folder + "/" + uuid.NewString() + ext
}
