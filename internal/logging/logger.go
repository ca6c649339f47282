package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/congo-pay/payu_gateway/internal/card"
)

// attribute keys whose values are always masked as card numbers
var panKeys = map[string]struct{}{
	"card_number": {},
	"pan":         {},
}

// New creates a JSON slog logger configured at the provided level. If the
// level string is invalid it defaults to info.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, ReplaceAttr: maskPAN})
	return slog.New(handler)
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

func maskPAN(_ []string, a slog.Attr) slog.Attr {
	if _, ok := panKeys[a.Key]; ok && a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, card.MaskPAN(a.Value.String()))
	}
	return a
}
