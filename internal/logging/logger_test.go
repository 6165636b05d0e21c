package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snapsort/internal/logging"
	"snapsort/internal/services"
)

func TestNewWritesConsoleFormatToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "snapsort.log")

	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "monitor")
	logger.Info("new image detected", logging.String("path", "/watch/a b.jpg"))
	logger.Debug("should be filtered")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "INFO monitor: new image detected") {
		t.Fatalf("unexpected console line: %q", out)
	}
	if !strings.Contains(out, `path="/watch/a b.jpg"`) {
		t.Fatalf("expected quoted attr value, got %q", out)
	}
	if strings.Contains(out, "should be filtered") {
		t.Fatalf("debug line leaked through info level: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsSessionFields(t *testing.T) {
	ctx := services.WithSessionID(t.Context(), "20250102_030405")
	ctx = services.WithSubjectID(ctx, "A1234")

	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 context fields, got %d", len(fields))
	}
	if fields[0].Key != logging.FieldSessionID || fields[0].Value.String() != "20250102_030405" {
		t.Fatalf("unexpected first field: %v", fields[0])
	}

	logger := logging.WithContext(ctx, nil)
	if logger == nil {
		t.Fatal("expected logger even with nil base")
	}
}
