// Package logging wires the package-level zerolog loggers every protocol
// package calls into, replacing the teacher's ad-hoc stderr "log" call
// sites with leveled, field-structured events.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// base is the process-wide logger. Protocol packages obtain loggers
// derived from base via For, so call sites never configure logging
// themselves.
var base = zerolog.New(os.Stderr).With().Timestamp().Logger()

// For returns a logger tagged with the calling component's name, e.g.
// logging.For("ntat").
func For(component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}

// Configure rewires the global logger; cmd/notary calls it at startup with
// the --log-level setting. The protocol packages never call this
// themselves. Loggers already returned by For keep the writer and level
// they were created with.
func Configure(w io.Writer, level zerolog.Level) {
	base = zerolog.New(w).Level(level).With().Timestamp().Logger()
}
