package ordernum

import (
	"fmt"
	"strings"
	"time"
)

const suffixLen = 8

// Generate derives a human-readable order number from the checkout session id
// and the completion time: ORDER-<unix>-<last 8 chars of session id, upper>.
// Collisions are possible in principle; the value is for display, the session
// id stays the dedup key.
func Generate(sessionID string, now time.Time) string {
	suffix := sessionID
	if len(suffix) > suffixLen {
		suffix = suffix[len(suffix)-suffixLen:]
	}
	return fmt.Sprintf("ORDER-%d-%s", now.Unix(), strings.ToUpper(suffix))
}
