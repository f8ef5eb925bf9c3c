// Package eligibility decides whether a person may apply for a licence or
// permit category. This is pure domain logic: no I/O, no clock. Every check
// runs and reports independently so callers can show all unmet conditions.
package eligibility

import (
	"fmt"
	"strings"
	"time"

	"dladmin/internal/category"
	"dladmin/internal/person"
)

// Policy controls how an already-held category is treated.
type Policy string

const (
	// PolicyWarnAlreadyHeld reports an already-held category as a warning only.
	PolicyWarnAlreadyHeld Policy = "warn"
	// PolicyBlockAlreadyHeld reports it as a blocking reason.
	PolicyBlockAlreadyHeld Policy = "block"
)

// ParsePolicy maps a configuration string to a Policy, defaulting to warn.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), string(PolicyBlockAlreadyHeld)) {
		return PolicyBlockAlreadyHeld
	}
	return PolicyWarnAlreadyHeld
}

// Check names one eligibility check.
type Check string

const (
	CheckAge           Check = "age"
	CheckPrerequisites Check = "prerequisites"
	CheckLearnerPermit Check = "learner_permit"
	CheckAlreadyHeld   Check = "already_held"
)

// Result is the outcome for one category.
type Result struct {
	Category string        `json:"category"`
	Kind     category.Kind `json:"kind"`
	Eligible bool          `json:"eligible"`
	Reasons  []string      `json:"reasons"`
	Warnings []string      `json:"warnings,omitempty"`
	Failed   []Check       `json:"failed_checks,omitempty"`
}

func (r *Result) fail(check Check, reason string) {
	r.Failed = append(r.Failed, check)
	r.Reasons = append(r.Reasons, reason)
}

// Input bundles what the resolver reads.
type Input struct {
	Person   person.Person
	Existing []person.ExistingLicense
	Now      time.Time
	Policy   Policy
}

// Resolve evaluates target against the input.
func Resolve(target category.Category, in Input) Result {
	res := Result{
		Category: target.Code,
		Kind:     target.Kind,
		Reasons:  []string{},
	}

	age := in.Person.Age(in.Now)
	if age < target.MinimumAge {
		res.fail(CheckAge, fmt.Sprintf("Minimum age: %d years (current: %d)", target.MinimumAge, age))
	}

	held := person.HeldCategories(in.Existing, category.KindLicense)
	if missing := missingPrerequisites(target.Prerequisites, held); len(missing) > 0 {
		res.fail(CheckPrerequisites, "Missing prerequisite categories: "+strings.Join(missing, ", "))
	}

	if target.RequiresLearnerPermit && !person.HasLearnerPermit(in.Existing) {
		res.fail(CheckLearnerPermit, fmt.Sprintf("A learner's permit is required for category %s", target.Code))
	}

	if _, ok := person.HeldCategories(in.Existing, target.Kind)[target.Code]; ok {
		msg := fmt.Sprintf("Category %s is already held", target.Code)
		if in.Policy == PolicyBlockAlreadyHeld {
			res.fail(CheckAlreadyHeld, msg)
		} else {
			res.Warnings = append(res.Warnings, msg)
		}
	}

	res.Eligible = len(res.Reasons) == 0
	return res
}

// ResolveCode looks up code of kind and resolves it. Unknown codes are never eligible.
func ResolveCode(kind category.Kind, code string, in Input) Result {
	c, ok := category.Lookup(kind, code)
	if !ok {
		return Result{
			Category: strings.ToUpper(strings.TrimSpace(code)),
			Kind:     kind,
			Reasons:  []string{fmt.Sprintf("Unknown category: %s", code)},
		}
	}
	return Resolve(c, in)
}

// ResolveAll resolves every category of kind in display order.
func ResolveAll(kind category.Kind, in Input) []Result {
	cats := category.Licenses()
	if kind == category.KindPermit {
		cats = category.Permits()
	}
	out := make([]Result, 0, len(cats))
	for _, c := range cats {
		out = append(out, Resolve(c, in))
	}
	return out
}

func missingPrerequisites(prereqs []string, held map[string]struct{}) []string {
	var missing []string
	for _, p := range prereqs {
		if _, ok := held[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
