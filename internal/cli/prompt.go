package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/engine"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
)

// ParseIntent turns one prompt line into an engine event.
func ParseIntent(line string) (engine.Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty intent")
	}
	verb, args := fields[0], fields[1:]

	argText := func() string { return strings.Join(args, " ") }
	argID := func() (model.TopicID, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%s takes exactly one topic id", verb)
		}
		return model.TopicID(args[0]), nil
	}
	noArgs := func(ev engine.Event) (engine.Event, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%s takes no arguments", verb)
		}
		return ev, nil
	}

	switch verb {
	case "add":
		if argText() == "" {
			return nil, fmt.Errorf("add needs topic text")
		}
		return engine.SubmitTopic{Text: argText()}, nil
	case "vote":
		id, err := argID()
		if err != nil {
			return nil, err
		}
		return engine.CastVote{TopicID: id}, nil
	case "unvote":
		id, err := argID()
		if err != nil {
			return nil, err
		}
		return engine.RetractVote{TopicID: id}, nil
	case "delete":
		id, err := argID()
		if err != nil {
			return nil, err
		}
		return engine.DeleteTopic{TopicID: id}, nil
	case "discuss":
		id, err := argID()
		if err != nil {
			return nil, err
		}
		return engine.Discuss{TopicID: id}, nil
	case "read":
		id, err := argID()
		if err != nil {
			return nil, err
		}
		return engine.MarkRead{TopicID: id}, nil
	case "sort":
		return noArgs(engine.SortTopics{})
	case "finish":
		return noArgs(engine.FinishDiscussion{})
	case "again":
		return noArgs(engine.VoteAgain{})
	case "timer":
		if len(args) != 1 {
			return nil, fmt.Errorf("timer takes minutes")
		}
		minutes, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("timer: %q is not a number", args[0])
		}
		return engine.SetTimer{Minutes: minutes}, nil
	case "notimer":
		return noArgs(engine.ClearTimer{})
	case "poll":
		return noArgs(engine.StartContinuationVote{})
	case "nopoll":
		return noArgs(engine.ClearContinuationVote{})
	case "moveon":
		return noArgs(engine.CastContinuationVote{Choice: model.MoveOn})
	case "stay":
		return noArgs(engine.CastContinuationVote{Choice: model.Stay})
	case "abstain":
		return noArgs(engine.CastContinuationVote{Choice: model.Abstain})
	case "noballot":
		return noArgs(engine.RetractContinuationVote{})
	case "dismiss":
		return noArgs(engine.DismissError{})
	default:
		return nil, fmt.Errorf("unknown intent %q", verb)
	}
}

// renderView prints the projected view as indented JSON.
func renderView(app *engine.App) string {
	out, err := json.MarshalIndent(app.View(), "", "  ")
	if err != nil {
		return fmt.Sprintf("render view: %v", err)
	}
	return string(out)
}
