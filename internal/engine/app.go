package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/remote"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// TopicIDGenerator mints ids for new topics.
// Implemented by UUIDGenerator (production) and fixed generators (tests).
type TopicIDGenerator interface {
	NewTopicID() model.TopicID
}

// UUIDGenerator mints random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewTopicID() model.TopicID {
	return model.TopicID(uuid.NewString())
}

// Effect is a fire-and-forget side-effect request for the presentation
// layer, separate from store writes. No acknowledgement is expected.
type Effect interface {
	isEffect()
}

// FocusTopicInput asks the presentation layer to focus and select the
// edit input for a topic.
type FocusTopicInput struct {
	TopicID model.TopicID
}

func (FocusTopicInput) isEffect() {}

// App is the process-wide state tree: the reconciled collections, the
// discussion state machine, the edit overlay, purely local read marks,
// the user identity, and the error banner.
//
// Every external event goes through Apply, one at a time, on one
// goroutine. Apply returns the store writes the event produced;
// presentation side effects accumulate and are drained via Effects.
type App struct {
	user  model.User
	paths store.Paths
	ids   TopicIDGenerator

	rec     *Reconciler
	disc    *Discussion
	overlay *Overlay

	readMarks map[model.TopicID]struct{}
	lastErr   *Banner
	now       model.Timestamp

	effects []Effect
}

// NewApp builds the state tree for one session. The clock seeds the
// current time so that time-based commands issued before the first tick
// arrives already compute against a real deadline, not the zero epoch.
func NewApp(user model.User, paths store.Paths, ids TopicIDGenerator, clock func() time.Time) *App {
	return &App{
		user:      user,
		paths:     paths,
		ids:       ids,
		rec:       NewReconciler(),
		disc:      NewDiscussion(),
		overlay:   NewOverlay(),
		readMarks: make(map[model.TopicID]struct{}),
		now:       model.TimestampOf(clock()),
	}
}

// User returns the current identity.
func (a *App) User() model.User {
	return a.user
}

// LastError returns the error banner, or nil when dismissed.
func (a *App) LastError() *Banner {
	return a.lastErr
}

// Effects drains the pending presentation side effects.
func (a *App) Effects() []Effect {
	effects := a.effects
	a.effects = nil
	return effects
}

// Apply folds one event into the state tree and returns the store writes
// it produced. It is the single update entry point; callers must invoke
// it from one goroutine only.
func (a *App) Apply(ev Event) []store.Write {
	switch ev := ev.(type) {
	case FromStore:
		a.applyDelivery(ev.Delivery)
		return nil

	case Tick:
		// Drives the remaining-time display only; reconciled
		// collections are off limits here.
		a.now = ev.Now
		return nil

	case SubmitTopic:
		return a.submitTopic(ev.Text)

	case CastVote:
		vote := model.Vote{UserID: a.user.UserID(), TopicID: ev.TopicID}
		return []store.Write{store.Set{Path: a.paths.Vote(vote), Doc: store.EncodeVote(vote)}}

	case RetractVote:
		vote := model.Vote{UserID: a.user.UserID(), TopicID: ev.TopicID}
		return []store.Write{store.Delete{Paths: []store.Path{a.paths.Vote(vote)}}}

	case DeleteTopic:
		return a.deleteTopic(ev.TopicID)

	case BeginEdit:
		return a.beginEdit(ev.TopicID)

	case EditDraft:
		a.overlay.UpdateDraft(ev.TopicID, ev.Text)
		return nil

	case SaveEdit:
		return a.saveEdit(ev.TopicID)

	case CancelEdit:
		a.overlay.Discard(ev.TopicID)
		return nil

	case MarkRead:
		a.readMarks[ev.TopicID] = struct{}{}
		return nil

	case SortTopics:
		a.rec.Sort()
		return nil

	case Discuss:
		if !a.requireAdmin("discuss") {
			return nil
		}
		return a.disc.Discuss(ev.TopicID, a.paths)

	case FinishDiscussion:
		if !a.requireAdmin("finish discussion") {
			return nil
		}
		return a.disc.Finish(a.paths)

	case VoteAgain:
		if !a.requireAdmin("vote again") {
			return nil
		}
		return a.disc.VoteAgain(a.paths)

	case SetTimer:
		if !a.requireAdmin("set timer") {
			return nil
		}
		return a.disc.SetTimer(a.now, ev.Minutes, a.paths)

	case ClearTimer:
		if !a.requireAdmin("clear timer") {
			return nil
		}
		return a.disc.ClearTimer(a.paths)

	case StartContinuationVote:
		if !a.requireAdmin("start continuation vote") {
			return nil
		}
		return a.disc.StartPoll(a.paths)

	case ClearContinuationVote:
		if !a.requireAdmin("clear continuation vote") {
			return nil
		}
		return a.disc.ClearPoll(a.paths)

	case CastContinuationVote:
		return a.disc.CastBallot(a.user.UserID(), ev.Choice, a.paths)

	case RetractContinuationVote:
		return a.disc.RetractBallot(a.user.UserID(), a.paths)

	case ToggleAdminMode:
		a.toggleAdminMode(ev.Enabled)
		return nil

	case DismissError:
		a.lastErr = nil
		return nil

	default:
		slog.Warn("ignoring unknown event", "type", fmt.Sprintf("%T", ev))
		return nil
	}
}

// ReportWriteError folds an asynchronous write failure into the banner.
// Writes are fire-and-forget for the core, so this is the only trace a
// failed one leaves.
func (a *App) ReportWriteError(err error) {
	banner := bannerForError(err)
	a.lastErr = &banner
	slog.Error("store write failed", "error", err)
}

func (a *App) applyDelivery(d store.Delivery) {
	switch d := d.(type) {
	case store.TopicDiff:
		a.rec.ApplyTopicDiff(d)
	case store.VoteSnapshot:
		a.rec.ApplyVoteSnapshot(d.Votes)
	case store.DiscussionTopicDoc:
		a.disc.ApplyTopicDoc(d)
	case store.ContinuationVoteDoc:
		a.disc.ApplyPollDoc(d)
	case store.ContinuationBallots:
		a.disc.ApplyBallots(d)
	case store.DiscussedSnapshot:
		a.disc.ApplyHistory(d)
	case store.DeadlineDoc:
		a.disc.ApplyDeadline(d)
	case store.Failure:
		banner := bannerFor(d)
		a.lastErr = &banner
		slog.Error("store failure", "code", d.Code, "message", d.Message)
	default:
		slog.Warn("ignoring unknown delivery", "tag", d.DeliveryTag())
	}
}

func (a *App) submitTopic(text string) []store.Write {
	text = model.NormalizeText(text)
	if text == "" {
		return nil
	}

	topic := model.Topic{
		ID:        a.ids.NewTopicID(),
		Text:      text,
		CreatorID: a.user.UserID(),
	}
	// The creator has obviously seen their own topic.
	a.readMarks[topic.ID] = struct{}{}

	return []store.Write{
		store.Set{Path: a.paths.Topic(topic.ID), Doc: store.EncodeTopic(topic)},
	}
}

// deleteTopic removes the topic and all of its votes in one batch, so no
// orphan votes reference a deleted topic. If the topic is in discussion,
// the discussion state is cleared as well.
func (a *App) deleteTopic(id model.TopicID) []store.Write {
	if !a.mayModify(id) {
		return nil
	}

	a.overlay.Discard(id)
	delete(a.readMarks, id)

	deletePaths := []store.Path{a.paths.Topic(id)}
	for _, voter := range a.rec.Tally().VotersFor(id) {
		vote := model.Vote{UserID: voter, TopicID: id}
		deletePaths = append(deletePaths, a.paths.Vote(vote))
	}

	writes := []store.Write{store.Delete{Paths: deletePaths}}
	writes = append(writes, a.disc.TopicDeleted(id, a.paths)...)
	return writes
}

func (a *App) beginEdit(id model.TopicID) []store.Write {
	if !a.mayModify(id) {
		return nil
	}
	topics, ok := a.rec.Topics()
	if !ok {
		return nil
	}
	if a.overlay.BeginEdit(id, topics) {
		a.effects = append(a.effects, FocusTopicInput{TopicID: id})
	}
	return nil
}

func (a *App) saveEdit(id model.TopicID) []store.Write {
	topics, ok := a.rec.Topics()
	if !ok {
		return nil
	}
	merged, ok := a.overlay.Commit(id, topics)
	if !ok {
		// Topic deleted mid-edit, or no draft open. Dropped by design of
		// the contract: no error, no write.
		return nil
	}
	return []store.Write{
		store.Set{Path: a.paths.Topic(merged.ID), Doc: store.EncodeTopic(merged)},
	}
}

// mayModify gates editing and deleting: the creator or an effective
// admin. UI gating only; the store owns real access control.
func (a *App) mayModify(id model.TopicID) bool {
	if model.IsEffectiveAdmin(a.user) {
		return true
	}
	topics, ok := a.rec.Topics()
	if !ok {
		return false
	}
	topic, ok := topics.Get(id)
	if !ok {
		return false
	}
	return topic.CreatorID == a.user.UserID()
}

func (a *App) requireAdmin(action string) bool {
	if model.IsEffectiveAdmin(a.user) {
		return true
	}
	slog.Debug("dropping admin-gated intent", "action", action)
	return false
}

func (a *App) toggleAdminMode(enabled bool) {
	switch u := a.user.(type) {
	case model.Authenticated:
		u.AdminModeEnabled = enabled
		a.user = u
	case model.Anonymous:
		// Nothing to toggle.
	}
}

// SetAdminGranted applies the auth collaborator's admin assertion.
func (a *App) SetAdminGranted(granted bool) {
	if u, ok := a.user.(model.Authenticated); ok {
		u.AdminGranted = remote.Got(granted)
		a.user = u
	}
}
