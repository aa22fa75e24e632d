package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/testutil"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T, file string) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(file, Paths{})
	require.NoError(t, err)
	s.now = testutil.NewClock(testEpoch).Now
	t.Cleanup(func() { s.Close() })
	return s
}

func receive(t *testing.T, s *SQLiteStore, n int) []Delivery {
	t.Helper()
	out := make([]Delivery, 0, n)
	for len(out) < n {
		select {
		case d := <-s.Deliveries():
			out = append(out, d)
		case <-time.After(time.Second):
			t.Fatalf("received %d of %d deliveries", len(out), n)
		}
	}
	return out
}

func TestSQLiteStore_BootstrapEmptyState(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "test.db"))

	require.NoError(t, s.Bootstrap(context.Background()))

	deliveries := receive(t, s, len(Tags))
	for i, tag := range Tags {
		assert.Equal(t, tag, deliveries[i].DeliveryTag(), "delivery %d", i)
	}

	diff := deliveries[0].(TopicDiff)
	assert.Empty(t, diff.Added)
	assert.Nil(t, deliveries[2].(DiscussionTopicDoc).TopicID)
	assert.False(t, deliveries[3].(ContinuationVoteDoc).Active)
	assert.Nil(t, deliveries[6].(DeadlineDoc).Deadline)
}

func TestSQLiteStore_SetEmitsAddedThenModified(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))
	receive(t, s, len(Tags))

	topic := model.Topic{ID: "T1", Text: "first", CreatorID: "alice"}
	require.NoError(t, s.Apply(ctx, []Write{
		Set{Path: s.paths.Topic("T1"), Doc: EncodeTopic(topic)},
	}))

	diff := receive(t, s, 1)[0].(TopicDiff)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "first", diff.Added[0].Text)
	require.NotNil(t, diff.Added[0].CreatedAt, "sentinel resolved to the store clock")
	assert.Equal(t, model.TimestampOf(testEpoch), *diff.Added[0].CreatedAt)

	// Upsert at the same path comes back as a modification.
	topic.CreatedAt = diff.Added[0].CreatedAt
	topic.Text = "second"
	require.NoError(t, s.Apply(ctx, []Write{
		Set{Path: s.paths.Topic("T1"), Doc: EncodeTopic(topic)},
	}))

	diff = receive(t, s, 1)[0].(TopicDiff)
	assert.Empty(t, diff.Added)
	require.Len(t, diff.Modified, 1)
	assert.Equal(t, "second", diff.Modified[0].Text)
}

func TestSQLiteStore_BatchDeleteEmitsBothSubscriptions(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))
	receive(t, s, len(Tags))

	vote := model.Vote{UserID: "u1", TopicID: "T1"}
	require.NoError(t, s.Apply(ctx, []Write{
		Set{Path: s.paths.Topic("T1"), Doc: EncodeTopic(model.Topic{ID: "T1", Text: "x", CreatorID: "u1"})},
		Set{Path: s.paths.Vote(vote), Doc: EncodeVote(vote)},
	}))
	receive(t, s, 2)

	// Topic and its vote removed as one batch.
	require.NoError(t, s.Apply(ctx, []Write{
		Delete{Paths: []Path{s.paths.Topic("T1"), s.paths.Vote(vote)}},
	}))

	deliveries := receive(t, s, 2)
	diff := deliveries[0].(TopicDiff)
	assert.Equal(t, []model.TopicID{"T1"}, diff.Removed)
	snap := deliveries[1].(VoteSnapshot)
	assert.Empty(t, snap.Votes)
}

func TestSQLiteStore_InsertMintsIDAndResolvesSentinel(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))
	receive(t, s, len(Tags))

	require.NoError(t, s.Apply(ctx, []Write{
		Insert{Collection: s.paths.Discussed(), Doc: EncodeDiscussed("T1")},
	}))

	snap := receive(t, s, 1)[0].(DiscussedSnapshot)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, model.TopicID("T1"), snap.Entries[0].TopicID)
	require.NotNil(t, snap.Entries[0].FinishedAt)
	assert.Equal(t, model.TimestampOf(testEpoch), *snap.Entries[0].FinishedAt)
}

func TestSQLiteStore_SingleDocumentSubscriptions(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))
	receive(t, s, len(Tags))

	require.NoError(t, s.Apply(ctx, []Write{
		Set{Path: s.paths.DiscussionTopic(), Doc: EncodeDiscussionTopic("T1")},
		Set{Path: s.paths.Deadline(), Doc: EncodeDeadline(90_000)},
		Set{Path: s.paths.ContinuationVote(), Doc: EncodeContinuationVoteDoc(true)},
	}))

	deliveries := receive(t, s, 3)
	topicDoc := deliveries[0].(DiscussionTopicDoc)
	require.NotNil(t, topicDoc.TopicID)
	assert.Equal(t, model.TopicID("T1"), *topicDoc.TopicID)
	assert.True(t, deliveries[1].(ContinuationVoteDoc).Active)
	deadline := deliveries[2].(DeadlineDoc)
	require.NotNil(t, deadline.Deadline)
	assert.Equal(t, model.Timestamp(90_000), *deadline.Deadline)

	// Deleting the documents reports them absent again.
	require.NoError(t, s.Apply(ctx, []Write{
		Delete{Paths: []Path{s.paths.DiscussionTopic(), s.paths.Deadline()}},
	}))
	deliveries = receive(t, s, 2)
	assert.Nil(t, deliveries[0].(DiscussionTopicDoc).TopicID)
	assert.Nil(t, deliveries[1].(DeadlineDoc).Deadline)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s := openTestStore(t, file)
	require.NoError(t, s.Bootstrap(ctx))
	receive(t, s, len(Tags))
	require.NoError(t, s.Apply(ctx, []Write{
		Set{Path: s.paths.Topic("T1"), Doc: EncodeTopic(model.Topic{ID: "T1", Text: "durable", CreatorID: "alice"})},
	}))
	receive(t, s, 1)
	require.NoError(t, s.Close())

	reopened := openTestStore(t, file)
	require.NoError(t, reopened.Bootstrap(ctx))
	deliveries := receive(t, reopened, len(Tags))
	diff := deliveries[0].(TopicDiff)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "durable", diff.Added[0].Text)
}

func TestSQLiteStore_WorkspaceIsolation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	a, err := OpenSQLite(file, Paths{Workspace: "a"})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.Bootstrap(ctx))
	receive(t, a, len(Tags))
	require.NoError(t, a.Apply(ctx, []Write{
		Set{Path: a.paths.Topic("T1"), Doc: EncodeTopic(model.Topic{ID: "T1", Text: "ours", CreatorID: "u"})},
	}))
	receive(t, a, 1)
	require.NoError(t, a.Close())

	b, err := OpenSQLite(file, Paths{Workspace: "b"})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	require.NoError(t, b.Bootstrap(ctx))
	deliveries := receive(t, b, len(Tags))
	assert.Empty(t, deliveries[0].(TopicDiff).Added, "other workspace's topics stay invisible")
}

func TestSQLiteStore_ApplyRejectsShortPath(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "test.db"))

	err := s.Apply(context.Background(), []Write{
		Set{Path: Path{"topics"}, Doc: Document{}},
	})
	assert.Error(t, err)
}
