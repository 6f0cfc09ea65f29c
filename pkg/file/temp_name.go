package file

import (
	"strings"

	"github.com/google/uuid"
)

// MakeTempName builds "<kind>_<token><ext>". The random token keeps names
// disjoint across concurrent requests.
func MakeTempName(kind, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return kind + "_" + strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ToLower(ext)
}
