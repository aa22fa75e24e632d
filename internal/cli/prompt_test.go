package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/engine"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
)

func TestParseIntent(t *testing.T) {
	cases := []struct {
		line string
		want engine.Event
	}{
		{"add Retro format", engine.SubmitTopic{Text: "Retro format"}},
		{"vote T1", engine.CastVote{TopicID: "T1"}},
		{"unvote T1", engine.RetractVote{TopicID: "T1"}},
		{"delete T1", engine.DeleteTopic{TopicID: "T1"}},
		{"discuss T1", engine.Discuss{TopicID: "T1"}},
		{"read T1", engine.MarkRead{TopicID: "T1"}},
		{"sort", engine.SortTopics{}},
		{"finish", engine.FinishDiscussion{}},
		{"again", engine.VoteAgain{}},
		{"timer 5", engine.SetTimer{Minutes: 5}},
		{"notimer", engine.ClearTimer{}},
		{"poll", engine.StartContinuationVote{}},
		{"nopoll", engine.ClearContinuationVote{}},
		{"moveon", engine.CastContinuationVote{Choice: model.MoveOn}},
		{"stay", engine.CastContinuationVote{Choice: model.Stay}},
		{"abstain", engine.CastContinuationVote{Choice: model.Abstain}},
		{"noballot", engine.RetractContinuationVote{}},
		{"dismiss", engine.DismissError{}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := ParseIntent(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseIntent_Errors(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"empty line", "   "},
		{"unknown verb", "frobnicate"},
		{"add without text", "add"},
		{"vote without id", "vote"},
		{"vote with extra args", "vote T1 T2"},
		{"timer without minutes", "timer"},
		{"timer non-numeric", "timer soon"},
		{"sort with args", "sort now"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIntent(tc.line)
			assert.Error(t, err)
		})
	}
}
