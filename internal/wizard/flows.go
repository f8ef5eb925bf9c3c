package wizard

import (
	"dladmin/internal/eligibility"
	"dladmin/internal/form"
	dErrors "dladmin/pkg/domain-errors"
)

func to(step StepID) []Edge { return []Edge{{To: step}} }

func personNode(next StepID) Node {
	return Node{ID: StepPerson, Title: "Applicant", Validate: validatePerson, Edges: to(next)}
}

func medicalNode(edges ...Edge) Node {
	return Node{ID: StepMedical, Title: "Medical", Schema: medicalSchema, Validate: validateMedical, Edges: edges}
}

func biometricNode() Node {
	return Node{ID: StepBiometric, Title: "Biometrics", Validate: validateBiometric, Edges: to(StepReview)}
}

func reviewNode() Node {
	return Node{ID: StepReview, Title: "Review", Schema: reviewSchema, Validate: validateReview}
}

func normalizePermits(vs form.Values) form.Values {
	if codes, ok := vs[FieldProfessionalCategories].AsEnumList(); ok {
		vs[FieldProfessionalCategories] = form.EnumList(eligibility.NormalizePermits(codes)...)
	}
	return vs
}

func policeRequired(s *Session, _ Env) bool { return s.PoliceClearanceRequired() }

var flows = map[ApplicationType]Graph{
	TypeNewLicense: newGraph(TypeNewLicense,
		personNode(StepCategory),
		Node{ID: StepCategory, Title: "Category", Schema: categorySchema, Validate: validateCategory, Edges: to(StepMedical)},
		medicalNode(Edge{To: StepBiometric}),
		biometricNode(),
		reviewNode(),
	),
	TypeProfessional: newGraph(TypeProfessional,
		personNode(StepPermits),
		Node{
			ID: StepPermits, Title: "Professional permits", Schema: permitsSchema,
			Normalize: normalizePermits, Validate: validatePermits, Edges: to(StepMedical),
		},
		medicalNode(
			Edge{To: StepPolice, When: policeRequired},
			Edge{To: StepBiometric},
		),
		Node{ID: StepPolice, Title: "Police clearance", Schema: policeSchema, Validate: validatePolice, Edges: to(StepBiometric)},
		biometricNode(),
		reviewNode(),
	),
	TypeForeignConversion: newGraph(TypeForeignConversion,
		personNode(StepForeignLicense),
		Node{ID: StepForeignLicense, Title: "Foreign licence", Schema: foreignLicenseSchema, Validate: validateForeignLicense, Edges: to(StepCategory)},
		Node{ID: StepCategory, Title: "Category", Schema: categorySchema, Validate: validateCategory, Edges: to(StepMedical)},
		medicalNode(Edge{To: StepBiometric}),
		biometricNode(),
		reviewNode(),
	),
	TypeTemporary: newGraph(TypeTemporary,
		personNode(StepTemporary),
		Node{ID: StepTemporary, Title: "Temporary licence", Schema: temporarySchema, Validate: validateTemporary, Edges: to(StepBiometric)},
		biometricNode(),
		reviewNode(),
	),
}

// FlowFor returns the step graph for an application type.
func FlowFor(t ApplicationType) (Graph, error) {
	g, ok := flows[t]
	if !ok {
		return Graph{}, dErrors.New(dErrors.CodeValidation, "unsupported application type: "+string(t))
	}
	return g, nil
}

// Types lists the supported application types.
func Types() []ApplicationType {
	return []ApplicationType{TypeNewLicense, TypeProfessional, TypeForeignConversion, TypeTemporary}
}
