package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyDocsDir    = "docs_dir"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRoute      = "route"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyRequestID  = "request_id"
	KeyCount      = "count"
	KeyFailed     = "failed"
	KeyQuery      = "query"
	KeyJob        = "job"
	KeySubject    = "subject"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func DocsDir(d string) slog.Attr      { return slog.String(KeyDocsDir, d) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Failed(n int) slog.Attr          { return slog.Int(KeyFailed, n) }
func Query(q string) slog.Attr        { return slog.String(KeyQuery, q) }
func Job(name string) slog.Attr       { return slog.String(KeyJob, name) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
