// Package logger construye el logger estructurado de la aplicación.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New crea un logger zerolog que escribe en stderr; stdout queda
// reservado para los documentos que devuelven las consultas.
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "fleximart-catalog").Logger()
}
