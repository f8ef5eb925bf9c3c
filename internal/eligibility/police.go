package eligibility

import (
	"dladmin/internal/category"
	"dladmin/internal/person"
	"dladmin/pkg/platform/strings"
)

// NormalizePermits cleans a professional permit selection: codes are trimmed,
// uppercased and de-duplicated, unknown codes dropped, implied co-categories
// added (D brings G), and the result returned in display order.
func NormalizePermits(codes []string) []string {
	selected := make(map[string]struct{})
	for _, code := range strings.DedupeAndTrimUpper(codes) {
		c, ok := category.Permit(code)
		if !ok {
			continue
		}
		selected[c.Code] = struct{}{}
		for _, implied := range c.Implies {
			selected[implied] = struct{}{}
		}
	}

	out := make([]string, 0, len(selected))
	for _, code := range category.PermitCodes() {
		if _, ok := selected[code]; ok {
			out = append(out, code)
		}
	}
	return out
}

// RequiresPoliceClearance reports whether any selected permit category, or any
// category on an active professional permit already held, requires a police
// clearance.
func RequiresPoliceClearance(selected []string, existing []person.ExistingLicense) bool {
	for _, code := range NormalizePermits(selected) {
		if c, ok := category.Permit(code); ok && c.RequiresPoliceClearance {
			return true
		}
	}
	for code := range person.HeldCategories(existing, category.KindPermit) {
		if c, ok := category.Permit(code); ok && c.RequiresPoliceClearance {
			return true
		}
	}
	return false
}
