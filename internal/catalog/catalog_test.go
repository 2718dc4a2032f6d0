package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsCoverEveryPair(t *testing.T) {
	for _, ct := range CallTypes {
		for _, cl := range ChecklistTypes {
			assert.NotEmpty(t, Defaults(ct, cl), "%s/%s", ct, cl)
		}
	}
}

func TestDefaultsVoicemailShared(t *testing.T) {
	want := []string{"Purpose", "Call to Action", "Timeframe"}
	for _, ct := range CallTypes {
		assert.Equal(t, want, Defaults(ct, Voicemail), ct)
	}
}

func TestDefaultsStartCallLengths(t *testing.T) {
	tests := []struct {
		callType string
		want     int
	}{
		{"sales", 9},
		{"reengagement", 9},
		{"followup", 7},
		{"at-risk", 10},
		{"support", 9},
		{"introduction", 10},
	}
	for _, tt := range tests {
		t.Run(tt.callType, func(t *testing.T) {
			assert.Len(t, Defaults(tt.callType, StartCall), tt.want)
		})
	}
}

func TestDefaultsUnknownPairIsEmpty(t *testing.T) {
	assert.Empty(t, Defaults("cold", StartCall))
	assert.Empty(t, Defaults("sales", "wrap up"))
	assert.Empty(t, Defaults("", ""))
}

func TestDefaultsReturnsCopy(t *testing.T) {
	labels := Defaults("sales", Voicemail)
	require.NotEmpty(t, labels)
	labels[0] = "mutated"
	assert.Equal(t, "Purpose", Defaults("sales", Voicemail)[0])

	subs := ObjectionSubtasks()
	subs[0] = "mutated"
	assert.Equal(t, "Listen & Acknowledge", ObjectionSubtasks()[0])
}

func TestObjectionSubtasks(t *testing.T) {
	assert.Equal(t, []string{
		"Listen & Acknowledge",
		"Clarify & Question",
		"Address the Objection",
		"Confirm & Close",
	}, ObjectionSubtasks())
}

func TestHasObjectionFlow(t *testing.T) {
	assert.True(t, HasObjectionFlow("sales", StartCall))
	assert.True(t, HasObjectionFlow("support", StartCall))
	assert.False(t, HasObjectionFlow("at-risk", StartCall))
	assert.False(t, HasObjectionFlow("sales", Voicemail))
	assert.False(t, HasObjectionFlow("Sales", StartCall))
}

func TestValidTypes(t *testing.T) {
	assert.True(t, ValidCallType("at-risk"))
	assert.False(t, ValidCallType("cold"))
	assert.True(t, ValidChecklistType("start call"))
	assert.False(t, ValidChecklistType("start-call"))
}
