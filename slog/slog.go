// Package slog provides logging decorators for mailscan services.
package slog
