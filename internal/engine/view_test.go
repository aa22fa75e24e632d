package engine

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

func viewJSON(t *testing.T, app *App) []byte {
	t.Helper()
	out, err := json.MarshalIndent(app.View(), "", "  ")
	require.NoError(t, err)
	return out
}

func assertGoldenView(t *testing.T, name string, app *App) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, viewJSON(t, app))
}

func TestView_Loading(t *testing.T) {
	app := newTestApp(model.Anonymous{ID: "u1"})
	assertGoldenView(t, "view_loading", app)
}

// TestView_Session renders a full mid-meeting state: one topic in
// discussion with a running timer and an open poll, vote-ordered topics
// still up for voting, and one finished topic.
func TestView_Session(t *testing.T) {
	app := newTestApp(adminUser("alice"))

	app.Apply(FromStore{Delivery: store.TopicDiff{Added: []model.Topic{
		{ID: "topic-a", Text: "API versioning", CreatorID: "alice"},
		{ID: "topic-b", Text: "Testing strategy", CreatorID: "bob"},
		{ID: "topic-c", Text: "Hiring", CreatorID: "bob"},
		{ID: "topic-d", Text: "Retro actions", CreatorID: "carol"},
	}}})
	app.Apply(FromStore{Delivery: store.VoteSnapshot{Votes: []model.Vote{
		{UserID: "alice", TopicID: "topic-a"},
		{UserID: "bob", TopicID: "topic-a"},
		{UserID: "alice", TopicID: "topic-c"},
	}}})

	app.Apply(FromStore{Delivery: store.DiscussionTopicDoc{TopicID: topicIDPtr("topic-a")}})
	deadline := model.Timestamp(1_000_090_000)
	app.Apply(FromStore{Delivery: store.DeadlineDoc{Deadline: &deadline}})
	app.Apply(FromStore{Delivery: store.ContinuationVoteDoc{Active: true}})
	app.Apply(FromStore{Delivery: store.ContinuationBallots{Ballots: []model.ContinuationVote{
		{UserID: "alice", Choice: model.MoveOn},
		{UserID: "bob", Choice: model.Stay},
	}}})
	finished := model.Timestamp(999_000_000)
	app.Apply(FromStore{Delivery: store.DiscussedSnapshot{Entries: []model.DiscussedTopic{
		{TopicID: "topic-d", FinishedAt: &finished},
	}}})

	app.Apply(MarkRead{TopicID: "topic-a"})
	app.Apply(Tick{Now: 1_000_000_000})

	assertGoldenView(t, "view_session", app)
}

func topicIDPtr(id model.TopicID) *model.TopicID {
	return &id
}

func TestView_DiscussedOrderNilFinishFirst(t *testing.T) {
	app := newTestApp(model.Anonymous{ID: "u1"})
	seedTopics(app, topic("old", "old"), topic("new", "new"), topic("pending", "pending"))

	older := model.Timestamp(1_000)
	newer := model.Timestamp(2_000)
	app.Apply(FromStore{Delivery: store.DiscussedSnapshot{Entries: []model.DiscussedTopic{
		{TopicID: "old", FinishedAt: &older},
		{TopicID: "pending"}, // finish time not yet assigned by the server
		{TopicID: "new", FinishedAt: &newer},
	}}})

	view := app.View()
	require.Len(t, view.Discussed, 3)
	assert.Equal(t, model.TopicID("pending"), view.Discussed[0].ID,
		"a missing finish time counts as most recent")
	assert.Equal(t, model.TopicID("new"), view.Discussed[1].ID)
	assert.Equal(t, model.TopicID("old"), view.Discussed[2].ID)
}

func TestView_EditingTopicCarriesDraft(t *testing.T) {
	app := newTestApp(model.Anonymous{ID: "u1"})
	seedTopics(app, model.Topic{ID: "T", Text: "original", CreatorID: "u1"})
	app.Apply(BeginEdit{TopicID: "T"})
	app.Apply(EditDraft{TopicID: "T", Text: "work in progress"})

	view := app.View()
	require.Len(t, view.ToVote, 1)
	assert.True(t, view.ToVote[0].Editing)
	assert.Equal(t, "work in progress", view.ToVote[0].Draft)
}

func TestView_ShowSortAfterLaterVotes(t *testing.T) {
	app := newTestApp(model.Anonymous{ID: "u1"})
	seedTopics(app, topic("A", "a"), topic("B", "b"))
	app.Apply(FromStore{Delivery: store.VoteSnapshot{}})
	assert.False(t, app.View().ShowSort, "bootstrap order is sorted")

	// New votes arrive but must not reshuffle the visible list.
	app.Apply(FromStore{Delivery: store.VoteSnapshot{Votes: []model.Vote{
		{UserID: "u2", TopicID: "B"},
	}}})
	assert.True(t, app.View().ShowSort)

	app.Apply(SortTopics{})
	assert.False(t, app.View().ShowSort)
}

func TestView_TimerExpired(t *testing.T) {
	app := newTestApp(adminUser("alice"))
	seedTopics(app, topic("T", "t"))
	app.Apply(Discuss{TopicID: "T"})
	deadline := model.Timestamp(5_000)
	app.Apply(FromStore{Delivery: store.DeadlineDoc{Deadline: &deadline}})
	app.Apply(Tick{Now: 10_000})

	view := app.View()
	require.NotNil(t, view.InDiscussion)
	require.NotNil(t, view.InDiscussion.Timer)
	assert.Equal(t, 0, view.InDiscussion.Timer.RemainingMinutes)
	assert.True(t, view.InDiscussion.Timer.Expired)
	assert.True(t, view.InDiscussion.Timer.LastMinute)
}
