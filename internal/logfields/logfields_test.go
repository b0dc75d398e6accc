package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"File", KeyFile, "posts.md", File("posts.md")},
		{"ParentFile", KeyParentFile, "index.md", ParentFile("index.md")},
		{"Space", KeySpace, "w7sdyslol3fu", Space("w7sdyslol3fu")},
		{"Environment", KeyEnvironment, "master", Environment("master")},
		{"ContentType", KeyContentType, "post", ContentType("post")},
		{"EntryID", KeyEntryID, "A96usFSlY4G0W4kwAqswk", EntryID("A96usFSlY4G0W4kwAqswk")},
		{"CommonKey", KeyCommonKey, "doublets", CommonKey("doublets")},
		{"URL", KeyURL, "https://cdn.contentful.com", URL("https://cdn.contentful.com")},
		{"Path", KeyPath, "build", Path("build")},
	}

	for _, tc := range cases {
		// Key drift would break log ingestion schemas.
		assert.Equal(t, tc.attrKey, tc.attr.Key, tc.name)
		assert.Equal(t, tc.attrVal, tc.attr.Value.String(), tc.name)
	}
}

func TestNumericHelpers(t *testing.T) {
	assert.Equal(t, KeyCount, Count(3).Key)
	assert.Equal(t, int64(3), Count(3).Value.Int64())
	assert.Equal(t, KeyStatus, Status(404).Key)
	assert.Equal(t, KeyAttempt, Attempt(2).Key)

	d := Duration(1500 * time.Microsecond)
	assert.Equal(t, KeyDurationMS, d.Key)
	assert.InDelta(t, 1.5, d.Value.Float64(), 0.0001)
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "", attr.Value.String())

	attr = Error(errors.New("err-test"))
	assert.Equal(t, "err-test", attr.Value.String())
}
