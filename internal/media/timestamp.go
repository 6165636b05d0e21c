package media

import (
	"log/slog"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"snapsort/internal/logging"
)

// ExifTime extracts the capture date from a photo's EXIF metadata.
// Returns DateTimeOriginal when present, else the DateTime tag.
func ExifTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}

	return x.DateTime()
}

// ResolveTimestamp determines the best-known capture time for a photo:
// EXIF first, file modification time as fallback. Missing or malformed
// metadata is expected and never an error; if even the stat fails the
// current time is returned so callers always get a usable instant.
func ResolveTimestamp(logger *slog.Logger, path string) time.Time {
	if t, err := ExifTime(path); err == nil {
		return t
	} else if logger != nil {
		logger.Debug("no usable EXIF timestamp, using file modification time",
			logging.String("path", path),
			logging.Error(err),
		)
	}

	info, err := os.Stat(path)
	if err == nil {
		return info.ModTime()
	}
	return time.Now()
}
