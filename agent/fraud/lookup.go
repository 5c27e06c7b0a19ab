package fraud

import "strings"

// FindByName returns the index of the first case whose userName equals name
// after trimming and case-folding. Duplicate names resolve to storage order.
func FindByName(cases []Case, name string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return -1, false
	}
	for i := range cases {
		if strings.ToLower(strings.TrimSpace(cases[i].UserName)) == want {
			return i, true
		}
	}
	return -1, false
}
