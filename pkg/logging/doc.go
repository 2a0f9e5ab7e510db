// Package logging provides a small subsystem-tagged wrapper around
// log/slog used across the application.
//
// Every log call carries a subsystem name ("TokenManager", "Focus",
// "Flow", ...) so that a single text stream stays greppable. The
// wrapper exists so that call sites stay terse and so that token
// values never end up in a log line by accident: callers log URLs,
// statuses and counts, never credentials.
package logging
