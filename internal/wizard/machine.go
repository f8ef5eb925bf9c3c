package wizard

import (
	"fmt"
	"slices"

	dErrors "dladmin/pkg/domain-errors"
)

// Outcome reports a navigation attempt. A blocked move leaves the session
// untouched and carries the blocking step's messages.
type Outcome struct {
	Moved      bool       `json:"moved"`
	From       StepID     `json:"from"`
	To         StepID     `json:"to"`
	BlockedAt  StepID     `json:"blocked_at,omitempty"`
	Validation Validation `json:"validation"`
}

func stay(s *Session) Outcome {
	return Outcome{From: s.Current, To: s.Current, Validation: valid()}
}

// Advance moves to the next step when the current step is valid.
func Advance(g Graph, s *Session, env Env) Outcome {
	out := stay(s)
	out.Validation = g.Validate(s.Current, s, env)
	if !out.Validation.Valid {
		out.BlockedAt = s.Current
		return out
	}
	next, ok := g.NextFrom(s.Current, s, env)
	if !ok {
		return out
	}
	s.History = append(s.History, s.Current)
	s.Current = next
	out.Moved, out.To = true, next
	return out
}

// Back returns to the previously visited step. It is a no-op on the first step.
func Back(s *Session) Outcome {
	out := stay(s)
	if len(s.History) == 0 {
		return out
	}
	prev := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	s.Current = prev
	out.Moved, out.To = true, prev
	return out
}

// GoTo jumps to target. Visited steps are always reachable. Forward jumps
// follow the path as the guards resolve now and require every step before
// the target to be valid.
func GoTo(g Graph, s *Session, env Env, target StepID) (Outcome, error) {
	if _, ok := g.Node(target); !ok {
		return Outcome{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown step: %s", target))
	}
	out := stay(s)
	if target == s.Current {
		return out, nil
	}
	if i := slices.Index(s.History, target); i >= 0 {
		s.History = s.History[:i]
		s.Current = target
		out.Moved, out.To = true, target
		return out, nil
	}

	path := g.Path(s, env)
	from := slices.Index(path, s.Current)
	idx := slices.Index(path, target)
	if from < 0 || idx < from {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("step %s is not reachable from %s", target, s.Current))
	}
	for _, step := range path[from:idx] {
		if v := g.Validate(step, s, env); !v.Valid {
			out.BlockedAt = step
			out.Validation = v
			return out, nil
		}
	}
	s.History = append(s.History, path[from:idx]...)
	s.Current = target
	out.Moved, out.To = true, target
	return out, nil
}

// StepStatus is one tab of the wizard header.
type StepStatus struct {
	ID         StepID     `json:"id"`
	Title      string     `json:"title"`
	Current    bool       `json:"current"`
	Visited    bool       `json:"visited"`
	Enabled    bool       `json:"enabled"`
	Validation Validation `json:"validation"`
}

// Statuses reports every step on the current path. A step is enabled when it
// was visited or every step before it is valid.
func Statuses(g Graph, s *Session, env Env) []StepStatus {
	path := g.Path(s, env)
	out := make([]StepStatus, 0, len(path))
	priorValid := true
	for _, step := range path {
		n, _ := g.Node(step)
		visited := step == s.Current || slices.Contains(s.History, step)
		v := g.Validate(step, s, env)
		out = append(out, StepStatus{
			ID:         step,
			Title:      n.Title,
			Current:    step == s.Current,
			Visited:    visited,
			Enabled:    visited || priorValid,
			Validation: v,
		})
		priorValid = priorValid && v.Valid
	}
	return out
}

// ReadyToSubmit reports whether the session may be submitted: it sits on the
// terminal step and every step on its path is valid.
func ReadyToSubmit(g Graph, s *Session, env Env) Validation {
	if !g.Terminal(s.Current) {
		return invalid("Applications can only be submitted from the review step")
	}
	var c check
	for _, step := range g.Path(s, env) {
		v := g.Validate(step, s, env)
		if v.Valid {
			continue
		}
		n, _ := g.Node(step)
		for _, m := range v.Messages {
			c.add(n.Title + ": " + m)
		}
	}
	return c.result()
}
