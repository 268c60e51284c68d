package notify

import "log"

// logDropped records that a notification could not be shown (wrong
// platform, or the notification center rejected it) without making that
// failure fatal to the caller — the core signal it reacted to (retry
// exhaustion, phase change) has already been handled regardless.
func logDropped(kind string, err error) {
	log.Printf("[NOTIFY] %s: %v", kind, err)
}
