// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxContentFormSize bounds lesson and exercise form submissions, which
	// carry the full marked-up text.
	MaxContentFormSize = 1 << 20 // 1 MB

	// MaxSmallFormSize bounds sign-in, sign-up, chapter and user-role forms.
	MaxSmallFormSize = 64 << 10 // 64 KB

	// MaxAPIBodySize bounds JSON API request bodies.
	MaxAPIBodySize = 64 << 10
)
