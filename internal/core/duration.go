package core

import "time"

const (
	tenMinutes = 10 * time.Minute
	oneHour    = time.Hour
)

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
