package checkin

import "strings"

// concerningKeywords flag a mood text for an early warning in the log.
// The screen never alerts by itself; only an assessment verdict does.
var concerningKeywords = []string{"sad", "alone", "struggling", "anxious"}

// Concerning reports whether mood mentions any concerning keyword.
func Concerning(mood string) bool {
	lower := strings.ToLower(mood)
	for _, k := range concerningKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
