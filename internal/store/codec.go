package store

import (
	"fmt"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
)

// DecodeError marks data from the store that could not be interpreted.
// The engine folds these into the dismissible error banner; the affected
// value simply stays at its last good state.
type DecodeError struct {
	Tag Tag
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Tag, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeTopic decodes one topic document.
func DecodeTopic(id string, doc Document) (model.Topic, error) {
	text, err := getString(doc, "text")
	if err != nil {
		return model.Topic{}, err
	}
	creator, err := getString(doc, "creator")
	if err != nil {
		return model.Topic{}, err
	}

	topic := model.Topic{
		ID:        model.TopicID(id),
		Text:      model.NormalizeText(text),
		CreatorID: model.UserID(creator),
	}

	// createdAt is server-assigned and absent until the write round-trips.
	if raw, ok := doc["createdAt"]; ok && raw != nil {
		ts, err := decodeTimestamp(raw)
		if err != nil {
			return model.Topic{}, fmt.Errorf("createdAt: %w", err)
		}
		topic.CreatedAt = &ts
	}

	return topic, nil
}

// EncodeTopic encodes a topic for Set. CreatedAt is written as a
// ServerTimestamp sentinel when not yet known, so the store assigns it.
func EncodeTopic(t model.Topic) Document {
	doc := Document{
		"text":    t.Text,
		"creator": string(t.CreatorID),
	}
	if t.CreatedAt != nil {
		doc["createdAt"] = encodeTimestamp(*t.CreatedAt)
	} else {
		doc["createdAt"] = ServerTimestamp{}
	}
	return doc
}

// DecodeVote decodes one vote document.
func DecodeVote(doc Document) (model.Vote, error) {
	userID, err := getString(doc, "userId")
	if err != nil {
		return model.Vote{}, err
	}
	topicID, err := getString(doc, "topicId")
	if err != nil {
		return model.Vote{}, err
	}
	return model.Vote{UserID: model.UserID(userID), TopicID: model.TopicID(topicID)}, nil
}

// EncodeVote encodes a vote for Set at the "userId:topicId" path.
func EncodeVote(v model.Vote) Document {
	return Document{
		"userId":  string(v.UserID),
		"topicId": string(v.TopicID),
	}
}

// DecodeTopicDiff decodes a raw diff batch for the topics collection.
func DecodeTopicDiff(added, modified []RawDoc, removed []string) (TopicDiff, error) {
	diff := TopicDiff{}
	for _, raw := range added {
		topic, err := DecodeTopic(raw.ID, raw.Data)
		if err != nil {
			return TopicDiff{}, fmt.Errorf("added %q: %w", raw.ID, err)
		}
		diff.Added = append(diff.Added, topic)
	}
	for _, raw := range modified {
		topic, err := DecodeTopic(raw.ID, raw.Data)
		if err != nil {
			return TopicDiff{}, fmt.Errorf("modified %q: %w", raw.ID, err)
		}
		diff.Modified = append(diff.Modified, topic)
	}
	for _, id := range removed {
		diff.Removed = append(diff.Removed, model.TopicID(id))
	}
	return diff, nil
}

// DecodeVoteSnapshot decodes a full votes listing.
func DecodeVoteSnapshot(docs []RawDoc) (VoteSnapshot, error) {
	snap := VoteSnapshot{}
	for _, raw := range docs {
		vote, err := DecodeVote(raw.Data)
		if err != nil {
			return VoteSnapshot{}, fmt.Errorf("vote %q: %w", raw.ID, err)
		}
		snap.Votes = append(snap.Votes, vote)
	}
	return snap, nil
}

// DecodeDiscussionTopic decodes the optional in-discussion document.
// A nil document means no topic is in discussion.
func DecodeDiscussionTopic(doc Document) (DiscussionTopicDoc, error) {
	if doc == nil {
		return DiscussionTopicDoc{}, nil
	}
	id, err := getString(doc, "topicId")
	if err != nil {
		return DiscussionTopicDoc{}, err
	}
	topicID := model.TopicID(id)
	return DiscussionTopicDoc{TopicID: &topicID}, nil
}

// EncodeDiscussionTopic encodes the in-discussion document.
func EncodeDiscussionTopic(id model.TopicID) Document {
	return Document{"topicId": string(id)}
}

// DecodeContinuationVoteDoc decodes the optional poll-activity document.
// A nil document means the poll is inactive.
func DecodeContinuationVoteDoc(doc Document) (ContinuationVoteDoc, error) {
	if doc == nil {
		return ContinuationVoteDoc{}, nil
	}
	active, err := getBool(doc, "isActive")
	if err != nil {
		return ContinuationVoteDoc{}, err
	}
	return ContinuationVoteDoc{Active: active}, nil
}

// EncodeContinuationVoteDoc encodes the poll-activity document.
func EncodeContinuationVoteDoc(active bool) Document {
	return Document{"isActive": active}
}

// DecodeContinuationBallots decodes a full ballots listing.
func DecodeContinuationBallots(docs []RawDoc) (ContinuationBallots, error) {
	snap := ContinuationBallots{}
	for _, raw := range docs {
		userID, err := getString(raw.Data, "userId")
		if err != nil {
			return ContinuationBallots{}, fmt.Errorf("ballot %q: %w", raw.ID, err)
		}
		voteStr, err := getString(raw.Data, "vote")
		if err != nil {
			return ContinuationBallots{}, fmt.Errorf("ballot %q: %w", raw.ID, err)
		}
		choice, err := model.ParseContinuationChoice(voteStr)
		if err != nil {
			return ContinuationBallots{}, fmt.Errorf("ballot %q: %w", raw.ID, err)
		}
		snap.Ballots = append(snap.Ballots, model.ContinuationVote{
			UserID: model.UserID(userID),
			Choice: choice,
		})
	}
	return snap, nil
}

// EncodeContinuationBallot encodes one user's ballot document.
func EncodeContinuationBallot(b model.ContinuationVote) Document {
	return Document{
		"userId": string(b.UserID),
		"vote":   string(b.Choice),
	}
}

// DecodeDiscussedSnapshot decodes the finished-discussions history.
func DecodeDiscussedSnapshot(docs []RawDoc) (DiscussedSnapshot, error) {
	snap := DiscussedSnapshot{}
	for _, raw := range docs {
		topicID, err := getString(raw.Data, "topicId")
		if err != nil {
			return DiscussedSnapshot{}, fmt.Errorf("discussed %q: %w", raw.ID, err)
		}
		entry := model.DiscussedTopic{TopicID: model.TopicID(topicID)}
		if rawTS, ok := raw.Data["finishedAt"]; ok && rawTS != nil {
			ts, err := decodeTimestamp(rawTS)
			if err != nil {
				return DiscussedSnapshot{}, fmt.Errorf("discussed %q finishedAt: %w", raw.ID, err)
			}
			entry.FinishedAt = &ts
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap, nil
}

// EncodeDiscussed encodes a history entry for Insert, with the finish
// time assigned by the store.
func EncodeDiscussed(id model.TopicID) Document {
	return Document{
		"topicId":    string(id),
		"finishedAt": ServerTimestamp{},
	}
}

// DecodeDeadline decodes the optional deadline document {time: epoch-ms}.
func DecodeDeadline(doc Document) (DeadlineDoc, error) {
	if doc == nil {
		return DeadlineDoc{}, nil
	}
	millis, err := getInt(doc, "time")
	if err != nil {
		return DeadlineDoc{}, err
	}
	deadline := model.Timestamp(millis)
	return DeadlineDoc{Deadline: &deadline}, nil
}

// EncodeDeadline encodes the deadline document.
func EncodeDeadline(t model.Timestamp) Document {
	return Document{"time": int64(t)}
}

// decodeTimestamp decodes the server timestamp wire encoding
// {seconds, nanoseconds} into epoch milliseconds.
func decodeTimestamp(raw any) (model.Timestamp, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		if d, ok := raw.(Document); ok {
			doc = map[string]any(d)
		} else {
			return 0, fmt.Errorf("expected timestamp object, got %T", raw)
		}
	}
	seconds, err := getInt(doc, "seconds")
	if err != nil {
		return 0, err
	}
	nanos, err := getInt(doc, "nanoseconds")
	if err != nil {
		return 0, err
	}
	return model.TimestampFromParts(seconds, nanos), nil
}

func encodeTimestamp(t model.Timestamp) Document {
	millis := int64(t)
	return Document{
		"seconds":     millis / 1000,
		"nanoseconds": (millis % 1000) * 1_000_000,
	}
}

func getString(doc Document, key string) (string, error) {
	raw, ok := doc[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, raw)
	}
	return s, nil
}

func getBool(doc Document, key string) (bool, error) {
	raw, ok := doc[key]
	if !ok {
		return false, fmt.Errorf("missing field %q", key)
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("field %q: expected bool, got %T", key, raw)
	}
	return b, nil
}

// getInt accepts the numeric representations that reach us: int64 from
// in-process documents, float64 from JSON unmarshalling.
func getInt(doc map[string]any, key string) (int64, error) {
	raw, ok := doc[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	switch n := raw.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field %q: expected number, got %T", key, raw)
	}
}
