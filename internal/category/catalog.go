// Package category holds the static licence and professional-permit category
// catalog. Each category carries the rule metadata the eligibility resolver,
// medical requirement derivation and police-clearance derivation read.
package category

import (
	"slices"
	"strings"
)

// Kind distinguishes driving-licence categories from professional permits.
// The two code spaces overlap ("D" is both a bus licence and the dangerous
// goods permit), so a code is only meaningful together with its kind.
type Kind string

const (
	KindLicense Kind = "driving"
	KindPermit  Kind = "professional"
)

// Requirements is the rule metadata attached to a category.
type Requirements struct {
	MinimumAge int
	// Prerequisites are driving-licence categories that must already be held.
	Prerequisites              []string
	RequiresLearnerPermit      bool
	RequiresMedicalCertificate bool
	RequiresPoliceClearance    bool
	// Implies lists co-categories of the same kind that are always included
	// when this one is selected.
	Implies []string
}

// Category is one entry of the catalog.
type Category struct {
	Code        string
	Kind        Kind
	Description string
	Requirements
}

// LearnerPermitCodes are the learner's permit categories. Holding any one of
// them satisfies a RequiresLearnerPermit rule.
var LearnerPermitCodes = []string{"L1", "L2", "L3"}

// MedicalAgeThreshold is the age from which a medical assessment is mandatory
// for every category.
const MedicalAgeThreshold = 65

var licenseCategories = []Category{
	{Code: "A1", Kind: KindLicense, Description: "Motorcycle up to 125 cm3", Requirements: Requirements{MinimumAge: 16, RequiresLearnerPermit: true}},
	{Code: "A2", Kind: KindLicense, Description: "Motorcycle up to 35 kW", Requirements: Requirements{MinimumAge: 18, RequiresLearnerPermit: true}},
	{Code: "A", Kind: KindLicense, Description: "Motorcycle, unrestricted", Requirements: Requirements{MinimumAge: 20, Prerequisites: []string{"A2"}}},
	{Code: "B1", Kind: KindLicense, Description: "Light quadricycle", Requirements: Requirements{MinimumAge: 17, RequiresLearnerPermit: true}},
	{Code: "B", Kind: KindLicense, Description: "Light motor vehicle up to 3500 kg", Requirements: Requirements{MinimumAge: 18, RequiresLearnerPermit: true}},
	{Code: "B2", Kind: KindLicense, Description: "Light motor vehicle, automatic transmission", Requirements: Requirements{MinimumAge: 18, RequiresLearnerPermit: true}},
	{Code: "BE", Kind: KindLicense, Description: "Light motor vehicle with heavy trailer", Requirements: Requirements{MinimumAge: 18, Prerequisites: []string{"B"}}},
	{Code: "C1", Kind: KindLicense, Description: "Medium goods vehicle up to 7500 kg", Requirements: Requirements{MinimumAge: 18, Prerequisites: []string{"B"}, RequiresMedicalCertificate: true}},
	{Code: "C", Kind: KindLicense, Description: "Heavy goods vehicle", Requirements: Requirements{MinimumAge: 21, Prerequisites: []string{"B"}, RequiresMedicalCertificate: true}},
	{Code: "C1E", Kind: KindLicense, Description: "Medium goods vehicle with trailer", Requirements: Requirements{MinimumAge: 18, Prerequisites: []string{"C1"}, RequiresMedicalCertificate: true}},
	{Code: "CE", Kind: KindLicense, Description: "Articulated heavy goods vehicle", Requirements: Requirements{MinimumAge: 21, Prerequisites: []string{"C"}, RequiresMedicalCertificate: true}},
	{Code: "D1", Kind: KindLicense, Description: "Minibus up to 16 passengers", Requirements: Requirements{MinimumAge: 21, Prerequisites: []string{"B"}, RequiresMedicalCertificate: true}},
	{Code: "D", Kind: KindLicense, Description: "Bus", Requirements: Requirements{MinimumAge: 24, Prerequisites: []string{"B"}, RequiresMedicalCertificate: true}},
	{Code: "D2", Kind: KindLicense, Description: "Articulated bus", Requirements: Requirements{MinimumAge: 24, Prerequisites: []string{"D"}, RequiresMedicalCertificate: true}},
}

var permitCategories = []Category{
	{Code: "G", Kind: KindPermit, Description: "Goods transport", Requirements: Requirements{MinimumAge: 21, Prerequisites: []string{"B"}, RequiresMedicalCertificate: true}},
	{Code: "P", Kind: KindPermit, Description: "Passenger transport", Requirements: Requirements{MinimumAge: 21, Prerequisites: []string{"B"}, RequiresMedicalCertificate: true, RequiresPoliceClearance: true}},
	{Code: "D", Kind: KindPermit, Description: "Dangerous goods transport", Requirements: Requirements{MinimumAge: 21, Prerequisites: []string{"B"}, RequiresMedicalCertificate: true, RequiresPoliceClearance: true, Implies: []string{"G"}}},
}

// Licenses returns the driving-licence categories in display order.
func Licenses() []Category {
	return slices.Clone(licenseCategories)
}

// Permits returns the professional permit categories in display order.
func Permits() []Category {
	return slices.Clone(permitCategories)
}

// LicenseCodes returns the driving-licence codes in display order.
func LicenseCodes() []string {
	return codes(licenseCategories)
}

// PermitCodes returns the professional permit codes in display order.
func PermitCodes() []string {
	return codes(permitCategories)
}

// License looks up a driving-licence category by code (case-insensitive).
func License(code string) (Category, bool) {
	return find(licenseCategories, code)
}

// Permit looks up a professional permit category by code (case-insensitive).
func Permit(code string) (Category, bool) {
	return find(permitCategories, code)
}

// Lookup finds a category of the given kind.
func Lookup(kind Kind, code string) (Category, bool) {
	if kind == KindPermit {
		return Permit(code)
	}
	return License(code)
}

// IsLearnerPermit reports whether code is a learner's permit category.
func IsLearnerPermit(code string) bool {
	return slices.Contains(LearnerPermitCodes, strings.ToUpper(strings.TrimSpace(code)))
}

// SortLicenses orders driving-licence codes by display order; unknown codes sort last
// in their original relative order.
func SortLicenses(codes []string) []string {
	return sortBy(licenseCategories, codes)
}

// SortPermits orders permit codes by display order.
func SortPermits(codes []string) []string {
	return sortBy(permitCategories, codes)
}

func codes(cats []Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Code
	}
	return out
}

func find(cats []Category, code string) (Category, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range cats {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

func sortBy(cats []Category, in []string) []string {
	rank := make(map[string]int, len(cats))
	for i, c := range cats {
		rank[c.Code] = i
	}
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b string) int {
		ra, okA := rank[a]
		rb, okB := rank[b]
		switch {
		case okA && okB:
			return ra - rb
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
	return out
}
