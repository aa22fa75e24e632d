package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wire frame exchanged with the websocket backend. One frame type in both
// directions keeps the protocol trivially inspectable.
type wsFrame struct {
	Type string `json:"type"` // subscribe | insert | set | delete | data | error

	// Subscription and write addressing.
	Tag   Tag        `json:"tag,omitempty"`
	Path  []string   `json:"path,omitempty"`
	Paths [][]string `json:"paths,omitempty"`
	Doc   Document   `json:"doc,omitempty"`

	// Inbound data payloads.
	Kind     string   `json:"kind,omitempty"` // diff | snapshot | doc
	Added    []RawDoc `json:"added,omitempty"`
	Modified []RawDoc `json:"modified,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Docs     []RawDoc `json:"docs,omitempty"`

	// Error payloads.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// WSStore implements the Store contract over a websocket connection.
//
// On dial it subscribes every tag; the backend answers with an initial
// delivery per subscription and pushes further ones as they happen. A
// reader goroutine decodes frames onto the delivery stream; transport
// errors surface there as Failure deliveries, never as panics. There is
// no reconnect: the session ends with the connection.
type WSStore struct {
	conn  *websocket.Conn
	paths Paths
	queue *deliveryQueue
	out   chan Delivery

	writeMu sync.Mutex
	cancel  context.CancelFunc
}

const wsPingInterval = 30 * time.Second

// DialWS connects to the backend, subscribes all tags, and starts the
// reader and keepalive goroutines. The connection closes when ctx is
// cancelled or Close is called.
func DialWS(ctx context.Context, url string, paths Paths) (*WSStore, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &WSStore{
		conn:   conn,
		paths:  paths,
		queue:  newDeliveryQueue(),
		out:    make(chan Delivery, 16),
		cancel: cancel,
	}

	for _, tag := range Tags {
		frame := wsFrame{Type: "subscribe", Tag: tag, Path: paths.TagFor(tag)}
		if err := s.writeFrame(frame); err != nil {
			conn.Close()
			cancel()
			return nil, fmt.Errorf("subscribe %s: %w", tag, err)
		}
	}

	go s.queue.drain(s.out)
	go s.readLoop()
	go s.pingLoop(ctx)

	return s, nil
}

// Deliveries returns the ordered inbound stream.
func (s *WSStore) Deliveries() <-chan Delivery {
	return s.out
}

// Apply marshals each write to a frame and sends it. Fire-and-forget:
// the backend's acknowledgement is the eventual data delivery.
func (s *WSStore) Apply(ctx context.Context, writes []Write) error {
	for _, w := range writes {
		var frame wsFrame
		switch w := w.(type) {
		case Insert:
			frame = wsFrame{Type: "insert", Path: w.Collection, Doc: encodeSentinels(w.Doc)}
		case Set:
			frame = wsFrame{Type: "set", Path: w.Path, Doc: encodeSentinels(w.Doc)}
		case Delete:
			paths := make([][]string, len(w.Paths))
			for i, p := range w.Paths {
				paths[i] = p
			}
			frame = wsFrame{Type: "delete", Paths: paths}
		default:
			return fmt.Errorf("unknown write type %T", w)
		}
		if err := s.writeFrame(frame); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down the delivery stream, then the connection. The queue
// goes first: closing the conn fails the reader's blocked ReadMessage
// with a non-close error, and pushing onto a closed queue is a no-op, so
// a deliberate shutdown never surfaces as a transport failure.
func (s *WSStore) Close() error {
	s.cancel()
	s.queue.close()
	return s.conn.Close()
}

func (s *WSStore) writeFrame(frame wsFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (s *WSStore) readLoop() {
	defer s.queue.close()
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("store connection closed")
				return
			}
			s.queue.push(Failure{Code: "transport", Message: err.Error()})
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			s.queue.push(Failure{Code: "decode", Message: fmt.Sprintf("malformed frame: %v", err)})
			continue
		}
		s.handleFrame(frame)
	}
}

func (s *WSStore) handleFrame(frame wsFrame) {
	switch frame.Type {
	case "error":
		s.queue.push(Failure{Code: frame.Code, Message: frame.Message})
	case "data":
		d, err := decodeDataFrame(frame)
		if err != nil {
			s.queue.push(Failure{Code: "decode", Message: err.Error()})
			return
		}
		s.queue.push(d)
	default:
		slog.Warn("ignoring unknown frame", "type", frame.Type)
	}
}

// decodeDataFrame turns a data frame into the delivery for its tag.
func decodeDataFrame(frame wsFrame) (Delivery, error) {
	wrap := func(err error) error { return &DecodeError{Tag: frame.Tag, Err: err} }

	switch frame.Tag {
	case TagTopics:
		d, err := DecodeTopicDiff(frame.Added, frame.Modified, frame.Removed)
		if err != nil {
			return nil, wrap(err)
		}
		return d, nil
	case TagVotes:
		d, err := DecodeVoteSnapshot(frame.Docs)
		if err != nil {
			return nil, wrap(err)
		}
		return d, nil
	case TagDiscussionTopic:
		d, err := DecodeDiscussionTopic(frame.Doc)
		if err != nil {
			return nil, wrap(err)
		}
		return d, nil
	case TagContinuationVote:
		d, err := DecodeContinuationVoteDoc(frame.Doc)
		if err != nil {
			return nil, wrap(err)
		}
		return d, nil
	case TagContinuationBallots:
		d, err := DecodeContinuationBallots(frame.Docs)
		if err != nil {
			return nil, wrap(err)
		}
		return d, nil
	case TagDiscussed:
		d, err := DecodeDiscussedSnapshot(frame.Docs)
		if err != nil {
			return nil, wrap(err)
		}
		return d, nil
	case TagDeadline:
		d, err := DecodeDeadline(frame.Doc)
		if err != nil {
			return nil, wrap(err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("data frame for unknown tag %q", frame.Tag)
	}
}

// encodeSentinels rewrites ServerTimestamp markers into the wire form the
// backend resolves at write time.
func encodeSentinels(doc Document) Document {
	encoded := make(Document, len(doc))
	for k, v := range doc {
		if _, ok := v.(ServerTimestamp); ok {
			encoded[k] = map[string]any{"serverTimestamp": true}
			continue
		}
		encoded[k] = v
	}
	return encoded
}

func (s *WSStore) pingLoop(ctx context.Context) {
	t := time.NewTicker(wsPingInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.writeMu.Lock()
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				slog.Error("store ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
