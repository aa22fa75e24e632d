package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/remote"
)

func TestVote_DocID(t *testing.T) {
	v := Vote{UserID: "u1", TopicID: "t9"}
	assert.Equal(t, "u1:t9", v.DocID())
}

func TestParseContinuationChoice(t *testing.T) {
	tests := []struct {
		input   string
		want    ContinuationChoice
		wantErr bool
	}{
		{"moveOn", MoveOn, false},
		{"stay", Stay, false},
		{"abstain", Abstain, false},
		{"", "", true},
		{"MoveOn", "", true},
		{"yes", "", true},
	}

	for _, tt := range tests {
		got, err := ParseContinuationChoice(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
		} else {
			assert.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestTimestampFromParts(t *testing.T) {
	// decode formula: millis = seconds*1000 + nanoseconds/1e6
	assert.Equal(t, Timestamp(1_500), TimestampFromParts(1, 500_000_000))
	assert.Equal(t, Timestamp(0), TimestampFromParts(0, 0))
	assert.Equal(t, Timestamp(2_000), TimestampFromParts(2, 999), "sub-millisecond nanos truncate")
}

func TestTimestamp_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now, TimestampOf(now).Time().UTC())
}

func TestBefore_NilIsMostRecent(t *testing.T) {
	early := Timestamp(1_000)
	late := Timestamp(2_000)

	assert.True(t, Before(&early, &late))
	assert.False(t, Before(&late, &early))

	// nil sorts as the maximum possible time
	assert.True(t, Before(&late, nil))
	assert.False(t, Before(nil, &early))
	assert.False(t, Before(nil, nil))
}

func TestIsEffectiveAdmin(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{"anonymous", Anonymous{ID: "a"}, false},
		{
			"authenticated, grant still loading",
			Authenticated{ID: "u", AdminGranted: remote.Loading[bool](), AdminModeEnabled: true},
			false,
		},
		{
			"granted but toggled off",
			Authenticated{ID: "u", AdminGranted: remote.Got(true), AdminModeEnabled: false},
			false,
		},
		{
			"not granted, toggled on",
			Authenticated{ID: "u", AdminGranted: remote.Got(false), AdminModeEnabled: true},
			false,
		},
		{
			"granted and toggled on",
			Authenticated{ID: "u", AdminGranted: remote.Got(true), AdminModeEnabled: true},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEffectiveAdmin(tt.user))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) composes to U+00E9
	assert.Equal(t, "café", NormalizeText("café"))
	assert.Equal(t, "topic", NormalizeText("  topic \n"))
}
