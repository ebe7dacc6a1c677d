package rtlify

import (
	"crypto/sha256"
	"encoding/hex"
)

// CacheKey identifies the translation of a stripped unit core into
// targetLang. Locale spellings that name the same tag ("fa_IR", "fa-IR")
// share a key.
func CacheKey(content, targetLang string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:]) + ":" + ToHTMLLang(targetLang)
}
