package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID     = "build_id"
	KeyFile        = "file"
	KeyParentFile  = "parent_file"
	KeySpace       = "space"
	KeyEnvironment = "environment"
	KeyContentType = "content_type"
	KeyEntryID     = "entry_id"
	KeyCommonKey   = "common_key"
	KeyCount       = "count"
	KeyURL         = "url"
	KeyPath        = "path"
	KeyStatus      = "status"
	KeyAttempt     = "attempt"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr { return slog.String(KeyBuildID, id) }
func File(name string) slog.Attr { return slog.String(KeyFile, name) }
func ParentFile(name string) slog.Attr { return slog.String(KeyParentFile, name) }
func Space(id string) slog.Attr { return slog.String(KeySpace, id) }
func Environment(env string) slog.Attr { return slog.String(KeyEnvironment, env) }
func ContentType(ct string) slog.Attr { return slog.String(KeyContentType, ct) }
func EntryID(id string) slog.Attr { return slog.String(KeyEntryID, id) }
func CommonKey(key string) slog.Attr { return slog.String(KeyCommonKey, key) }
func URL(u string) slog.Attr { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr { return slog.Int(KeyStatus, code) }
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func Duration(d time.Duration) slog.Attr { return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
