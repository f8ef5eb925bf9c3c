package wizard

import (
	"dladmin/internal/category"
	"dladmin/internal/eligibility"
	"dladmin/internal/medical"
)

// Derived holds everything computed from the session's inputs. It is
// rebuilt on every read and never stored.
type Derived struct {
	Age                     int                  `json:"age"`
	PoliceClearanceRequired bool                 `json:"police_clearance_required"`
	ProfessionalCategories  []string             `json:"professional_categories,omitempty"`
	Eligibility             []eligibility.Result `json:"eligibility,omitempty"`
	MedicalRequirement      medical.Requirement  `json:"medical_requirement"`
	Medical                 *medical.Assessment  `json:"medical,omitempty"`
}

// View is the read model returned by every wizard operation.
type View struct {
	Session   *Session     `json:"session"`
	Path      []StepID     `json:"path"`
	Steps     []StepStatus `json:"steps"`
	Derived   Derived      `json:"derived"`
	CanSubmit bool         `json:"can_submit"`
}

// Derive computes the derived values for s.
func Derive(s *Session, env Env) Derived {
	d := Derived{
		Age:                     s.Age(env.Now),
		PoliceClearanceRequired: s.PoliceClearanceRequired(),
		ProfessionalCategories:  s.Permits(),
		MedicalRequirement:      s.MedicalRequirement(env.Now),
	}
	if cat, ok := s.LicenseCategory(); ok {
		d.Eligibility = append(d.Eligibility, s.CategoryEligibility(cat, env))
	}
	in := s.eligibilityInput(env)
	for _, code := range d.ProfessionalCategories {
		d.Eligibility = append(d.Eligibility, eligibility.ResolveCode(category.KindPermit, code, in))
	}
	if info := s.MedicalInformation(); info.Provided() {
		a := medical.Derive(info, d.MedicalRequirement)
		d.Medical = &a
	}
	return d
}

// Describe builds the view of s under g.
func Describe(g Graph, s *Session, env Env) View {
	return View{
		Session:   s,
		Path:      g.Path(s, env),
		Steps:     Statuses(g, s, env),
		Derived:   Derive(s, env),
		CanSubmit: !s.InFlight(env.Now) && ReadyToSubmit(g, s, env).Valid,
	}
}
