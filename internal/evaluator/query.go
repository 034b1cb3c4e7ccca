package evaluator

import (
	"strings"

	"github.com/liquers/liquers-go/internal/errors"
)

// Action is one step of a query pipeline: a command name with its arguments.
type Action struct {
	// Name is the command name, the first dash-separated token.
	Name string
	// Args are the remaining dash-separated tokens.
	Args []string
	// Raw is everything after the first dash, undivided. Commands that take
	// a single free-form argument (such as expressions) use Raw instead of
	// Args so dashes inside the argument survive.
	Raw string
}

// ParseQuery splits a query string into a pipeline of actions. Queries are
// slash-separated actions; each action is a dash-separated command name and
// arguments: "text-Hello/uppercase".
func ParseQuery(query string) ([]Action, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, &errors.ParseError{Query: query, Reason: "empty query", Err: errors.ErrEmptyQuery}
	}
	segments := strings.Split(trimmed, "/")
	actions := make([]Action, 0, len(segments))
	for i, seg := range segments {
		if seg == "" {
			return nil, errors.NewParseErrorAt(query, i+1, "empty action")
		}
		action, err := parseAction(seg)
		if err != nil {
			return nil, errors.NewParseErrorAt(query, i+1, err.Error())
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func parseAction(segment string) (Action, error) {
	parts := strings.Split(segment, "-")
	name := parts[0]
	if name == "" {
		return Action{}, errors.New("missing command name")
	}
	if !validName(name) {
		return Action{}, errors.New("invalid command name " + name)
	}
	a := Action{Name: name, Args: parts[1:]}
	if len(segment) > len(name) {
		a.Raw = segment[len(name)+1:]
	}
	return a, nil
}

// validName accepts non-empty lowercase identifiers: letters, digits and
// underscores, starting with a letter.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_' && i > 0:
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
