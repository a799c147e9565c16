package service

import "time"

// nowFunc supplies the current time; overridable in tests.
type nowFunc func() time.Time

// truncateToDay drops the time-of-day. All lifecycle date comparisons use
// calendar-day granularity.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dateLayout is the wire format for user-supplied calendar dates.
const dateLayout = "2006-01-02"

// ChangeNotifier receives a signal after any mutation so connected clients
// can re-read the rule set. Implemented by the websocket hub; nil is fine.
type ChangeNotifier interface {
	NotifyRulesChanged()
}
