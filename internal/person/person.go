// Package person models the applicant and the licences they already hold.
// Both are read-only inputs to the rules packages; age is always derived from
// the birth date at evaluation time.
package person

import (
	"slices"
	"strings"
	"time"

	"dladmin/internal/category"
	id "dladmin/pkg/domain"
)

// IdentityDocument is an alias document recorded against a person.
type IdentityDocument struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// Person is the applicant selected in the first wizard step.
type Person struct {
	ID          id.PersonID        `json:"id"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	OtherNames  string             `json:"other_names,omitempty"`
	BirthDate   time.Time          `json:"birth_date"`
	Nationality string             `json:"nationality"`
	Aliases     []IdentityDocument `json:"aliases,omitempty"`
}

// FullName joins the name parts that are present.
func (p Person) FullName() string {
	parts := []string{p.FirstName, p.OtherNames, p.LastName}
	return strings.Join(slices.DeleteFunc(parts, func(s string) bool { return strings.TrimSpace(s) == "" }), " ")
}

// Age returns completed years at now. A birthday later in the year has not
// been reached yet. A zero birth date yields 0.
func (p Person) Age(now time.Time) int {
	if p.BirthDate.IsZero() {
		return 0
	}
	return AgeAt(p.BirthDate, now)
}

// AgeAt returns completed years between birth and now.
func AgeAt(birth, now time.Time) int {
	now = now.In(birth.Location())
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// ExistingLicense is a licence or permit already issued to the person. The
// backend may omit Kind; see EffectiveKind.
type ExistingLicense struct {
	ID              string        `json:"id"`
	Kind            category.Kind `json:"kind"`
	Categories      []string      `json:"categories"`
	Active          bool          `json:"active"`
	IssueDate       time.Time     `json:"issue_date"`
	IssuingLocation string        `json:"issuing_location"`
}

// EffectiveKind returns Kind when set. Otherwise a licence carrying a
// permit-only code (G, P) is a professional permit and anything else is a
// driving licence. D alone is read as the bus category.
func (l ExistingLicense) EffectiveKind() category.Kind {
	if l.Kind != "" {
		return l.Kind
	}
	for _, c := range l.Categories {
		code := strings.ToUpper(strings.TrimSpace(c))
		if _, isPermit := category.Permit(code); !isPermit {
			continue
		}
		if _, isLicense := category.License(code); !isLicense {
			return category.KindPermit
		}
	}
	return category.KindLicense
}

// HeldCategories returns the union of category codes across active licences
// of the given kind. Learner's permits are issued as driving-licence kinds.
func HeldCategories(licenses []ExistingLicense, kind category.Kind) map[string]struct{} {
	held := make(map[string]struct{})
	for _, l := range licenses {
		if !l.Active || l.EffectiveKind() != kind {
			continue
		}
		for _, c := range l.Categories {
			code := strings.ToUpper(strings.TrimSpace(c))
			if code != "" {
				held[code] = struct{}{}
			}
		}
	}
	return held
}

// HoldsAny reports whether any active licence of kind carries one of codes.
func HoldsAny(licenses []ExistingLicense, kind category.Kind, codes []string) bool {
	held := HeldCategories(licenses, kind)
	for _, c := range codes {
		if _, ok := held[strings.ToUpper(c)]; ok {
			return true
		}
	}
	return false
}

// HasLearnerPermit reports whether an active learner's permit is held.
func HasLearnerPermit(licenses []ExistingLicense) bool {
	return HoldsAny(licenses, category.KindLicense, category.LearnerPermitCodes)
}
