// Package emoji maps symbolic keys to emoji with plain-text fallbacks for
// terminals that cannot render them.
package emoji

import (
	"sync/atomic"

	"github.com/yildizm/msgnorm/internal/common"
)

// emojiMap holds [emoji, fallback] pairs
var emojiMap = map[string][2]string{
	"error":       {"❌", "[ERR]"},
	"warning":     {"⚠️", "[WRN]"},
	"info":        {"ℹ️", "[INF]"},
	"debug":       {"🐛", "[DBG]"},
	"success":     {"✅", "[OK]"},
	"statistics":  {"📊", "[STATS]"},
	"group":       {"🧩", "[GRP]"},
	"new":         {"🆕", "[NEW]"},
	"template":    {"📝", "[TPL]"},
	"fingerprint": {"🔑", "[FP]"},
	"pattern":     {"🔍", "[PAT]"},
	"watch":       {"👀", "[WATCH]"},
	"gate_on":     {"🟢", "[ON]"},
	"gate_off":    {"⚪", "[OFF]"},
	"help":        {"❓", "[?]"},
	"door":        {"🚪", "[EXIT]"},
	"config":      {"📁", "[CFG]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if IsEmojiDisabled() {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}

// ForLevel returns the symbol of a log level.
func ForLevel(level common.LogLevel) string {
	switch level {
	case common.LevelFatal, common.LevelError:
		return GetEmoji("error")
	case common.LevelWarn:
		return GetEmoji("warning")
	case common.LevelInfo:
		return GetEmoji("info")
	default:
		return GetEmoji("debug")
	}
}
