package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleCurrentValue(t *testing.T) {
	title := NewTitle("Users")
	assert.Equal(t, "Users", title.Current())

	title.Set("Profile")
	assert.Equal(t, "Profile", title.Current())
}

func TestTitleNotifiesSubscribers(t *testing.T) {
	title := NewTitle("Users")

	var received []string
	title.Subscribe(func(v string) { received = append(received, v) })

	title.Set("Settings")
	title.Set("Profile")

	assert.Equal(t, []string{"Users", "Settings", "Profile"}, received)
}

func TestTitleLateSubscriberGetsOnlyLatest(t *testing.T) {
	title := NewTitle("Users")
	title.Set("Settings")
	title.Set("Profile")

	var received []string
	title.Subscribe(func(v string) { received = append(received, v) })

	assert.Equal(t, []string{"Profile"}, received, "no history replay")
}

func TestTitleUnsubscribe(t *testing.T) {
	title := NewTitle("Users")

	var count int
	cancel := title.Subscribe(func(string) { count++ })
	assert.Equal(t, 1, count)

	cancel()
	title.Set("Profile")
	assert.Equal(t, 1, count, "cancelled subscriber must not fire")
}
