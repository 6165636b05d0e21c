package marker

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"snapsort/internal/config"
	"snapsort/internal/logging"
)

// Detector decodes QR markers from photos and extracts subject identifiers.
type Detector struct {
	prefix string
	logger *slog.Logger
	reader gozxing.Reader
}

// NewDetector constructs a detector using the configured subject prefix.
func NewDetector(cfg *config.Config, logger *slog.Logger) *Detector {
	return &Detector{
		prefix: cfg.Session.SubjectPrefix,
		logger: logging.NewComponentLogger(logger, "marker"),
		reader: qrcode.NewQRCodeReader(),
	}
}

// Detect returns the subject identifier encoded in the photo's QR marker.
// The second return is false when the file cannot be read, holds no marker,
// or the payload is empty after parsing. None of those are errors for the
// caller; they are logged here and collapsed to "no marker".
func (d *Detector) Detect(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		d.logger.Warn("could not open image for marker detection",
			logging.String("path", path),
			logging.Error(err),
		)
		return "", false
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		d.logger.Warn("could not decode image for marker detection",
			logging.String("path", path),
			logging.Error(err),
		)
		return "", false
	}

	source := gozxing.NewLuminanceSourceFromImage(img)
	bitmap, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(source))
	if err != nil {
		d.logger.Warn("could not binarize image for marker detection",
			logging.String("path", path),
			logging.Error(err),
		)
		return "", false
	}

	result, err := d.reader.Decode(bitmap, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		// No QR code in the frame. The common case for ordinary photos.
		d.logger.Debug("no marker found", logging.String("path", path))
		return "", false
	}

	subject := d.ParseSubjectID(result.GetText())
	if subject == "" {
		d.logger.Warn("marker decoded to empty subject id", logging.String("path", path))
		return "", false
	}

	d.logger.Info("marker detected",
		logging.String("path", path),
		logging.String(logging.FieldSubjectID, subject),
	)
	return subject, true
}

// ParseSubjectID strips the configured prefix from a raw marker payload and
// trims surrounding whitespace. Payloads without the prefix pass through
// unchanged apart from trimming.
func (d *Detector) ParseSubjectID(payload string) string {
	payload = strings.TrimPrefix(payload, d.prefix)
	return strings.TrimSpace(payload)
}
