// Package marker recognizes trigger photos: images carrying a QR code whose
// payload identifies the subject a session belongs to.
//
// Detection is deliberately forgiving. Unreadable files, images without a
// code, and undecodable codes are all the same non-event for the caller; a
// trigger either yields a non-empty subject identifier or it does not.
package marker
