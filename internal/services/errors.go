package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLimitExceeded = errors.New("session limit exceeded")
	ErrCollect       = errors.New("collect error")
	ErrBackup        = errors.New("backup error")
	ErrRelocate      = errors.New("relocate error")
	ErrRecord        = errors.New("record error")
	ErrDetection     = errors.New("detection error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes step context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrRelocate
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the error's marker, used in error records.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrCollect):
		return "collect_failure"
	case errors.Is(err, ErrBackup):
		return "backup_failure"
	case errors.Is(err, ErrRelocate):
		return "relocate_failure"
	case errors.Is(err, ErrRecord):
		return "record_failure"
	case errors.Is(err, ErrDetection):
		return "detection_failure"
	case errors.Is(err, ErrConfiguration):
		return "configuration_failure"
	default:
		return "unknown_failure"
	}
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
