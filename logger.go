package objectmap

import "log/slog"

// Keys for the structured attributes the object map attaches to its debug
// log events.
const (
	// LogOidKey is the key for the oid an operation produced or touched.
	// The associated [slog.Value] is an int64.
	LogOidKey = "oid"
	// LogPathKey is the key for the path tuple an operation addressed.
	// The associated [slog.Value] is a string slice.
	LogPathKey = "path"
	// LogRemovedKey is the key for the count of oids a Remove call evicted.
	// The associated [slog.Value] is an int.
	LogRemovedKey = "removed"
)

// log emits a debug-level structured event if a logger was configured via
// WithLogger; otherwise it is a no-op, so the hot mutation path never pays
// for formatting when nobody is listening. This mirrors fox's posture with
// its opt-in Logger middleware: logging is never mandatory.
func (m *ObjectMap[R]) log(msg string, args ...any) {
	if m.logger == nil {
		return
	}
	m.logger.Debug(msg, args...)
}

func pathAttr(p Path) slog.Attr {
	return slog.Any(LogPathKey, []string(p))
}

func oidAttr(o OID) slog.Attr {
	return slog.Int64(LogOidKey, int64(o))
}
