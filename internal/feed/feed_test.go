package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclinedBy(t *testing.T) {
	declined := func(email string, self bool) Event {
		return Event{Attendees: []Attendee{{Email: email, Self: self, Response: "declined"}}}
	}

	assert.True(t, declined("me@example.com", false).DeclinedBy("me@example.com"))
	assert.True(t, declined("Me@Example.COM", false).DeclinedBy("me@example.com"))
	assert.False(t, declined("other@example.com", false).DeclinedBy("me@example.com"))

	// Self flag matches when the address does not.
	assert.True(t, declined("other@example.com", true).DeclinedBy("me@example.com"))
	assert.True(t, declined("other@example.com", true).DeclinedBy(""))

	accepted := Event{Attendees: []Attendee{{Email: "me@example.com", Self: true, Response: "accepted"}}}
	assert.False(t, accepted.DeclinedBy("me@example.com"))
	assert.False(t, Event{}.DeclinedBy("me@example.com"))
}
