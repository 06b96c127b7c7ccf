package core

import "time"

// Message is one accepted chat message. It is never modified after it has
// been inserted into a MessageStore.
type Message struct {
	Text string
	User string
	Date time.Time
}
