package engine

import (
	"sort"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
)

// TopicView is one topic as the presentation layer renders it.
type TopicView struct {
	ID        model.TopicID `json:"id"`
	Text      string        `json:"text"`
	Votes     int           `json:"votes"`
	Voted     bool          `json:"voted"`
	Unread    bool          `json:"unread"`
	Editing   bool          `json:"editing"`
	Draft     string        `json:"draft,omitempty"`
	CanEdit   bool          `json:"canEdit"`
	CanDelete bool          `json:"canDelete"`
}

// TimerView is the countdown as rendered: clamped whole minutes plus the
// two urgency thresholds the presentation layer pulses on.
type TimerView struct {
	RemainingMinutes int  `json:"remainingMinutes"`
	LastMinute       bool `json:"lastMinute"`
	Expired          bool `json:"expired"`
}

// PollView is the continuation poll as rendered.
type PollView struct {
	MoveOn     int                       `json:"moveOn"`
	Stay       int                       `json:"stay"`
	Abstain    int                       `json:"abstain"`
	UserChoice *model.ContinuationChoice `json:"userChoice,omitempty"`
}

// DiscussionView is the in-discussion slot as rendered.
type DiscussionView struct {
	Topic TopicView  `json:"topic"`
	Timer *TimerView `json:"timer,omitempty"`
	Poll  *PollView  `json:"poll,omitempty"`
}

// View is the exact, read-only structure the presentation layer renders.
// Recomputed after every state change, never stored.
type View struct {
	Loading      bool            `json:"loading"`
	InDiscussion *DiscussionView `json:"inDiscussion,omitempty"`
	ToVote       []TopicView     `json:"toVote"`
	Discussed    []TopicView     `json:"discussed"`
	ShowSort     bool            `json:"showSort"`
	Admin        bool            `json:"admin"`
	Error        *Banner         `json:"error,omitempty"`
}

// View projects the state tree into render-ready lists: the single
// in-discussion entry, the discussed history (finish time descending,
// missing timestamps most recent), and the remaining topics as the
// to-vote list in their current collection order.
func (a *App) View() View {
	view := View{
		ShowSort:  !a.rec.IsSorted(),
		Admin:     model.IsEffectiveAdmin(a.user),
		Error:     a.lastErr,
		ToVote:    []TopicView{},
		Discussed: []TopicView{},
	}

	topics, ok := a.rec.Topics()
	if !ok {
		view.Loading = true
		return view
	}

	currentID := a.disc.Current()
	history := a.disc.History()

	finishedAt := make(map[model.TopicID]*model.Timestamp, len(history))
	for _, entry := range history {
		finishedAt[entry.TopicID] = entry.FinishedAt
	}

	var discussed []model.Topic
	for _, topic := range topics.Topics() {
		if currentID != nil && topic.ID == *currentID {
			dv := a.discussionView(topic)
			view.InDiscussion = &dv
			continue
		}
		if _, ok := finishedAt[topic.ID]; ok {
			discussed = append(discussed, topic)
			continue
		}
		view.ToVote = append(view.ToVote, a.topicView(topic))
	}

	sort.SliceStable(discussed, func(i, j int) bool {
		return model.Before(finishedAt[discussed[j].ID], finishedAt[discussed[i].ID])
	})
	for _, topic := range discussed {
		view.Discussed = append(view.Discussed, a.topicView(topic))
	}

	return view
}

func (a *App) topicView(topic model.Topic) TopicView {
	tally := a.rec.Tally()
	draft, editing := a.overlay.Draft(topic.ID)
	_, read := a.readMarks[topic.ID]
	mayModify := model.IsEffectiveAdmin(a.user) || topic.CreatorID == a.user.UserID()

	return TopicView{
		ID:        topic.ID,
		Text:      topic.Text,
		Votes:     tally.CountFor(topic.ID),
		Voted:     tally.HasVote(a.user.UserID(), topic.ID),
		Unread:    !read,
		Editing:   editing,
		Draft:     draft,
		CanEdit:   mayModify,
		CanDelete: mayModify,
	}
}

func (a *App) discussionView(topic model.Topic) DiscussionView {
	dv := DiscussionView{Topic: a.topicView(topic)}

	if deadline := a.disc.Deadline(); deadline != nil {
		dv.Timer = &TimerView{
			RemainingMinutes: RemainingMinutes(a.now, *deadline),
			LastMinute:       AtOrBelow(a.now, *deadline, 1),
			Expired:          AtOrBelow(a.now, *deadline, 0),
		}
	}

	if a.disc.PollActive() {
		poll := PollView{}
		for _, ballot := range a.disc.Ballots() {
			switch ballot.Choice {
			case model.MoveOn:
				poll.MoveOn++
			case model.Stay:
				poll.Stay++
			case model.Abstain:
				poll.Abstain++
			}
			if ballot.UserID == a.user.UserID() {
				choice := ballot.Choice
				poll.UserChoice = &choice
			}
		}
		dv.Poll = &poll
	}

	return dv
}
