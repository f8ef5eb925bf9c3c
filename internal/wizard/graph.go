package wizard

import (
	"time"

	"dladmin/internal/eligibility"
	"dladmin/internal/form"
)

// StepID names a wizard step.
type StepID string

const (
	StepPerson         StepID = "person"
	StepCategory       StepID = "category"
	StepPermits        StepID = "permits"
	StepForeignLicense StepID = "foreign_license"
	StepTemporary      StepID = "temporary"
	StepMedical        StepID = "medical"
	StepPolice         StepID = "police"
	StepBiometric      StepID = "biometric"
	StepReview         StepID = "review"
)

// Env carries the evaluation context for validity predicates and guards.
type Env struct {
	Now    time.Time
	Policy eligibility.Policy
}

// Validation is a step validity result. Invalid steps carry inline messages.
type Validation struct {
	Valid    bool     `json:"valid"`
	Messages []string `json:"messages,omitempty"`
}

func valid() Validation { return Validation{Valid: true} }

func invalid(msgs ...string) Validation { return Validation{Messages: msgs} }

// check collects messages and reports valid when none were added.
type check struct{ msgs []string }

func (c *check) require(ok bool, msg string) {
	if !ok {
		c.msgs = append(c.msgs, msg)
	}
}

func (c *check) add(msgs ...string) { c.msgs = append(c.msgs, msgs...) }

func (c *check) result() Validation {
	if len(c.msgs) == 0 {
		return valid()
	}
	return invalid(c.msgs...)
}

// Guard decides whether an edge may be taken.
type Guard func(*Session, Env) bool

// Edge is a guarded transition to another step. A nil When always holds.
type Edge struct {
	To   StepID
	When Guard
}

// Node is one step of a flow.
type Node struct {
	ID     StepID
	Title  string
	Schema form.Schema
	// Normalize rewrites the step's fields after every accepted update.
	Normalize func(form.Values) form.Values
	Validate  func(*Session, Env) Validation
	Edges     []Edge
}

// Graph is the step graph of one application type. A node without edges is terminal.
type Graph struct {
	typ   ApplicationType
	start StepID
	nodes map[StepID]Node
}

func newGraph(t ApplicationType, nodes ...Node) Graph {
	g := Graph{typ: t, nodes: make(map[StepID]Node, len(nodes))}
	for i, n := range nodes {
		if i == 0 {
			g.start = n.ID
		}
		g.nodes[n.ID] = n
	}
	return g
}

// Type returns the application type the graph serves.
func (g Graph) Type() ApplicationType { return g.typ }

// Start returns the initial step.
func (g Graph) Start() StepID { return g.start }

// Node returns the step definition.
func (g Graph) Node(step StepID) (Node, bool) {
	n, ok := g.nodes[step]
	return n, ok
}

// Validate runs the step's validity predicate.
func (g Graph) Validate(step StepID, s *Session, env Env) Validation {
	n, ok := g.nodes[step]
	if !ok {
		return invalid("unknown step " + string(step))
	}
	if n.Validate == nil {
		return valid()
	}
	return n.Validate(s, env)
}

// NextFrom returns the step reached from step by the first edge whose guard holds.
func (g Graph) NextFrom(step StepID, s *Session, env Env) (StepID, bool) {
	n, ok := g.nodes[step]
	if !ok {
		return "", false
	}
	for _, e := range n.Edges {
		if e.When == nil || e.When(s, env) {
			return e.To, true
		}
	}
	return "", false
}

// Terminal reports whether step has no outgoing edges.
func (g Graph) Terminal(step StepID) bool {
	n, ok := g.nodes[step]
	return ok && len(n.Edges) == 0
}

// Path returns the steps from the start to the terminal step as the guards
// currently resolve them.
func (g Graph) Path(s *Session, env Env) []StepID {
	path := []StepID{g.start}
	seen := map[StepID]bool{g.start: true}
	for step := g.start; ; {
		next, ok := g.NextFrom(step, s, env)
		if !ok || seen[next] {
			return path
		}
		path = append(path, next)
		seen[next] = true
		step = next
	}
}
