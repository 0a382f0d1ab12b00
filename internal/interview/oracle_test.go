package interview

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spigell/interviewer/internal/ai"
)

// routeOracle answers by matching a fragment of the system prompt.
type routeOracle struct {
	mu     sync.Mutex
	routes []route
	calls  []string
}

type route struct {
	match string
	out   string
	err   error
}

func (o *routeOracle) on(match, out string, err error) *routeOracle {
	o.routes = append(o.routes, route{match: match, out: out, err: err})
	return o
}

func (o *routeOracle) Complete(_ context.Context, messages []ai.Message) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var system string
	for _, m := range messages {
		if m.Role == ai.RoleSystem {
			system = m.Content
		}
	}

	for _, r := range o.routes {
		if strings.Contains(system, r.match) {
			o.calls = append(o.calls, r.match)
			return r.out, r.err
		}
	}
	o.calls = append(o.calls, "unmatched")
	return "", errors.New("no route")
}

func (o *routeOracle) count(match string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.calls {
		if c == match {
			n++
		}
	}
	return n
}

const (
	routeTopics    = "resume analyzer"
	routeInitial   = "Generate diverse initial questions"
	routeAdaptive  = "conducting a comprehensive interview"
	routeDiscussed = "identify discussed topics"
)

var errDown = errors.New("oracle down")

func failingOracle() *routeOracle {
	return (&routeOracle{}).
		on(routeTopics, "", errDown).
		on(routeInitial, "", errDown).
		on(routeAdaptive, "", errDown).
		on(routeDiscussed, "", errDown)
}

type captureOracle struct {
	respond func(system, user string) string
}

func (c *captureOracle) Complete(_ context.Context, messages []ai.Message) (string, error) {
	var system, user string
	for _, m := range messages {
		if m.Role == ai.RoleSystem {
			system = m.Content
		} else {
			user = m.Content
		}
	}
	return c.respond(system, user), nil
}
