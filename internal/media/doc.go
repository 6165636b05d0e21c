// Package media holds the leaf helpers the session pipeline uses to judge
// files in the watch root: eligibility classification by name and extension,
// and capture-time resolution from EXIF metadata with a modification-time
// fallback.
package media
