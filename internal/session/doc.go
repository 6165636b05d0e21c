// Package session forms and commits photo sessions.
//
// A session starts when a trigger photo is detected: the collector gathers
// eligible photos captured within the configured window before the trigger,
// and the committer drives them through the commit state machine, namely
// limit check, backup, relocation with collision-safe sequential naming, and
// a durable done or error record. Sessions are processed one at a time; the
// committer assumes exclusive ownership of the watch root for the duration
// of a single Process call.
package session
