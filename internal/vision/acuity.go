package vision

import (
	"math"
	"strconv"
	"strings"
)

// Acuity is a parsed Snellen fraction "6/N". Denominator 0 means missing or
// malformed input and is treated as the worst case.
type Acuity struct {
	Raw         string
	Denominator float64
}

// ParseAcuity parses "6/N". Input without a slash, or with a non-numeric or
// non-positive denominator, yields Denominator 0.
func ParseAcuity(s string) Acuity {
	a := Acuity{Raw: s}
	_, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return a
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || n <= 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return a
	}
	a.Denominator = n
	return a
}

// Known reports whether the acuity parsed to a usable denominator.
func (a Acuity) Known() bool {
	return a.Denominator > 0
}

// Good reports whether the eye meets the standard for a two-eyed driver (6/12 or better).
func (a Acuity) Good() bool {
	return a.Known() && a.Denominator <= GoodEyeMax
}

// MeetsSingleEye reports whether the eye meets the stricter standard required
// when the other eye is impaired (6/9 or better).
func (a Acuity) MeetsSingleEye() bool {
	return a.Known() && a.Denominator <= SingleEyeMax
}
