package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements the Store contract against a local SQLite file.
//
// Every Apply runs in one transaction, then emits the resulting
// deliveries for each affected subscription: an incremental diff for
// topics, full snapshots or single documents for everything else. This is
// the same shape a remote backend delivers, so the engine cannot tell the
// difference.
type SQLiteStore struct {
	db    *sql.DB
	paths Paths
	queue *deliveryQueue
	out   chan Delivery
	now   func() time.Time

	// lastTopics is the topic set as of the previous emission, used to
	// turn the stored state into added/modified/removed diffs.
	lastTopics map[model.TopicID]model.Topic
}

// OpenSQLite creates or opens the store file and starts the delivery
// drainer. Call Bootstrap afterwards to emit the initial deliveries.
func OpenSQLite(path string, paths Paths) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under our single-threaded write pattern anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &SQLiteStore{
		db:         db,
		paths:      paths,
		queue:      newDeliveryQueue(),
		out:        make(chan Delivery, 16),
		now:        time.Now,
		lastTopics: make(map[model.TopicID]model.Topic),
	}
	go s.queue.drain(s.out)
	return s, nil
}

// Deliveries returns the ordered inbound stream.
func (s *SQLiteStore) Deliveries() <-chan Delivery {
	return s.out
}

// Bootstrap emits the current state of every subscription. The topics
// delivery is an added-only diff, matching a fresh remote subscription.
func (s *SQLiteStore) Bootstrap(ctx context.Context) error {
	for _, tag := range Tags {
		if err := s.emit(ctx, tag); err != nil {
			return fmt.Errorf("bootstrap %s: %w", tag, err)
		}
	}
	return nil
}

// Apply performs the writes in one transaction, then emits deliveries for
// each affected subscription.
func (s *SQLiteStore) Apply(ctx context.Context, writes []Write) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	touched := make(map[Tag]bool)
	for _, w := range writes {
		switch w := w.(type) {
		case Insert:
			id := uuid.NewString()
			if err := s.upsert(ctx, tx, w.Collection.Child(id), w.Doc); err != nil {
				return err
			}
			s.markTouched(touched, w.Collection.Child(id))
		case Set:
			if err := s.upsert(ctx, tx, w.Path, w.Doc); err != nil {
				return err
			}
			s.markTouched(touched, w.Path)
		case Delete:
			for _, p := range w.Paths {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM documents WHERE path = ?`, p.String(),
				); err != nil {
					return fmt.Errorf("delete %s: %w", p, err)
				}
				s.markTouched(touched, p)
			}
		default:
			return fmt.Errorf("unknown write type %T", w)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for _, tag := range Tags {
		if !touched[tag] {
			continue
		}
		if err := s.emit(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the delivery stream and closes the database.
func (s *SQLiteStore) Close() error {
	s.queue.close()
	return s.db.Close()
}

func (s *SQLiteStore) upsert(ctx context.Context, tx *sql.Tx, path Path, doc Document) error {
	if len(path) < 2 {
		return fmt.Errorf("path %q too short for a document", path)
	}
	data, err := json.Marshal(s.resolveSentinels(doc))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	collection := path[:len(path)-1]
	docID := path[len(path)-1]
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (path, collection, doc_id, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data
	`, path.String(), collection.String(), docID, string(data))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", path, err)
	}
	return nil
}

// resolveSentinels replaces ServerTimestamp markers with the store clock.
func (s *SQLiteStore) resolveSentinels(doc Document) Document {
	resolved := make(Document, len(doc))
	for k, v := range doc {
		if _, ok := v.(ServerTimestamp); ok {
			resolved[k] = encodeTimestamp(model.TimestampOf(s.now()))
			continue
		}
		resolved[k] = v
	}
	return resolved
}

func (s *SQLiteStore) markTouched(touched map[Tag]bool, docPath Path) {
	written := docPath.String()
	for _, tag := range Tags {
		watched := s.paths.TagFor(tag).String()
		parent := docPath[:len(docPath)-1].String()
		if written == watched || parent == watched {
			touched[tag] = true
		}
	}
}

// emit reads the current state for one subscription and queues the
// resulting delivery.
func (s *SQLiteStore) emit(ctx context.Context, tag Tag) error {
	switch tag {
	case TagTopics:
		return s.emitTopicDiff(ctx)
	case TagVotes:
		docs, err := s.listCollection(ctx, s.paths.Votes())
		if err != nil {
			return err
		}
		snap, err := DecodeVoteSnapshot(docs)
		if err != nil {
			return s.emitDecodeFailure(tag, err)
		}
		s.queue.push(snap)
	case TagDiscussionTopic:
		doc, err := s.readDoc(ctx, s.paths.DiscussionTopic())
		if err != nil {
			return err
		}
		d, err := DecodeDiscussionTopic(doc)
		if err != nil {
			return s.emitDecodeFailure(tag, err)
		}
		s.queue.push(d)
	case TagContinuationVote:
		doc, err := s.readDoc(ctx, s.paths.ContinuationVote())
		if err != nil {
			return err
		}
		d, err := DecodeContinuationVoteDoc(doc)
		if err != nil {
			return s.emitDecodeFailure(tag, err)
		}
		s.queue.push(d)
	case TagContinuationBallots:
		docs, err := s.listCollection(ctx, s.paths.ContinuationBallots())
		if err != nil {
			return err
		}
		snap, err := DecodeContinuationBallots(docs)
		if err != nil {
			return s.emitDecodeFailure(tag, err)
		}
		s.queue.push(snap)
	case TagDiscussed:
		docs, err := s.listCollection(ctx, s.paths.Discussed())
		if err != nil {
			return err
		}
		snap, err := DecodeDiscussedSnapshot(docs)
		if err != nil {
			return s.emitDecodeFailure(tag, err)
		}
		s.queue.push(snap)
	case TagDeadline:
		doc, err := s.readDoc(ctx, s.paths.Deadline())
		if err != nil {
			return err
		}
		d, err := DecodeDeadline(doc)
		if err != nil {
			return s.emitDecodeFailure(tag, err)
		}
		s.queue.push(d)
	}
	return nil
}

// emitTopicDiff compares the stored topics against the last emission and
// queues an added/modified/removed batch.
func (s *SQLiteStore) emitTopicDiff(ctx context.Context) error {
	docs, err := s.listCollection(ctx, s.paths.Topics())
	if err != nil {
		return err
	}

	current := make(map[model.TopicID]model.Topic, len(docs))
	diff := TopicDiff{}
	for _, raw := range docs {
		topic, err := DecodeTopic(raw.ID, raw.Data)
		if err != nil {
			return s.emitDecodeFailure(TagTopics, err)
		}
		current[topic.ID] = topic

		prev, seen := s.lastTopics[topic.ID]
		switch {
		case !seen:
			diff.Added = append(diff.Added, topic)
		case !topicsEqual(prev, topic):
			diff.Modified = append(diff.Modified, topic)
		}
	}
	for id := range s.lastTopics {
		if _, ok := current[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}

	s.lastTopics = current
	s.queue.push(diff)
	return nil
}

// topicsEqual compares by value; CreatedAt pointers from separate decode
// passes must not count as a difference.
func topicsEqual(a, b model.Topic) bool {
	if a.ID != b.ID || a.Text != b.Text || a.CreatorID != b.CreatorID {
		return false
	}
	if (a.CreatedAt == nil) != (b.CreatedAt == nil) {
		return false
	}
	return a.CreatedAt == nil || *a.CreatedAt == *b.CreatedAt
}

func (s *SQLiteStore) emitDecodeFailure(tag Tag, err error) error {
	s.queue.push(Failure{Code: "decode", Message: (&DecodeError{Tag: tag, Err: err}).Error()})
	return nil
}

// listCollection returns a collection's documents in insertion order.
func (s *SQLiteStore) listCollection(ctx context.Context, collection Path) ([]RawDoc, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, data FROM documents
		WHERE collection = ?
		ORDER BY rowid
	`, collection.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []RawDoc
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var doc Document
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, fmt.Errorf("unmarshal %s/%s: %w", collection, id, err)
		}
		docs = append(docs, RawDoc{ID: id, Data: doc})
	}
	return docs, rows.Err()
}

// readDoc returns the document at path, or nil if absent.
func (s *SQLiteStore) readDoc(ctx context.Context, path Path) (Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE path = ?`, path.String(),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return doc, nil
}
