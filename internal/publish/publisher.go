// Package publish posts messages to a social platform. The X API v2
// client is the production implementation; the Publisher interface
// keeps the bot logic independent of the platform.
package publish

import "context"

// MaxPostLen is the platform's message length limit.
const MaxPostLen = 280

// Publisher posts a single message to a social platform.
type Publisher interface {
	Publish(ctx context.Context, message string) error
}

// Truncate trims message to MaxPostLen characters, replacing the tail
// with an ellipsis when it does not fit. Lengths are counted in runes.
func Truncate(message string) string {
	runes := []rune(message)
	if len(runes) <= MaxPostLen {
		return message
	}
	return string(runes[:MaxPostLen-3]) + "..."
}

// TruncateKeeping trims message to MaxPostLen while always preserving
// the given suffix (e.g. a legal disclaimer).
func TruncateKeeping(message, suffix string) string {
	runes := []rune(message)
	if len(runes) <= MaxPostLen {
		return message
	}
	suffixRunes := []rune(suffix)
	keep := MaxPostLen - len(suffixRunes)
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + suffix
}
