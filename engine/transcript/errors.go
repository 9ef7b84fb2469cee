package transcript

import (
	"errors"

	"github.com/WessleyAI/gradepoint/engine/domain"
)

// Fatal parse failures. Callers match them with errors.Is.
var (
	ErrNotFound           = errors.New("transcript: document not found")
	ErrCorruptOrEncrypted = errors.New("transcript: document is corrupt or encrypted")
	ErrNoText             = errors.New("transcript: no text could be extracted")
	ErrNoCoursesFound     = errors.New("transcript: no courses were found")
	ErrLowQualityParse    = errors.New("transcript: format may not be supported")
)

// Stable kind names for transports that cannot carry Go errors.
const (
	KindNotFound           = "NotFound"
	KindCorruptOrEncrypted = "CorruptOrEncrypted"
	KindNoText             = "NoText"
	KindNoCoursesFound     = "NoCoursesFound"
	KindLowQualityParse    = "LowQualityParse"
	KindInvalidRecord      = "InvalidRecord"
	KindInternal           = "Internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrNotFound, KindNotFound},
	{ErrCorruptOrEncrypted, KindCorruptOrEncrypted},
	{ErrNoText, KindNoText},
	{ErrNoCoursesFound, KindNoCoursesFound},
	{ErrLowQualityParse, KindLowQualityParse},
	{domain.ErrInvalidCourse, KindInvalidRecord},
}

// Kind names the failure class of err. It returns "" for nil and
// KindInternal for anything outside the taxonomy.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsUserError reports whether err is caused by the submitted document
// rather than by the service.
func IsUserError(err error) bool {
	k := Kind(err)
	return k != "" && k != KindInternal
}
