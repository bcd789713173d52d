package routing

import "strings"

// DepartmentGeneral is the fallback department when no rule matches.
const DepartmentGeneral = "General"

type rule struct {
	keywords   []string
	department string
}

// Rules are ordered; the first matching group wins. Earlier groups are more
// specific, so reordering would silently change historical routing outcomes.
var rules = []rule{
	{keywords: []string{"garbage", "litter"}, department: "Sanitation"},
	{keywords: []string{"pothole", "road"}, department: "Public Works"},
	{keywords: []string{"noise"}, department: "Enforcement"},
}

// Classify maps a free-text issue type to a department label. It is a pure
// function: case-insensitive substring match against the ordered rule table,
// first match wins, "General" when nothing matches.
func Classify(issueType string) string {
	t := strings.ToLower(issueType)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.department
			}
		}
	}
	return DepartmentGeneral
}

// SuggestedIssueTypes is the fixed suggestion set shown by the mobile client.
// The type field is never constrained to it server-side.
var SuggestedIssueTypes = []string{
	"Garbage", "Pothole", "Traffic", "Noise", "Littering",
	"Public Urination", "Spitting", "Noise Pollution",
	"Illegal Parking", "Graffiti", "Broken Street Lights", "Blocked Sidewalks",
}
