package filter

import "regexp"

// Match is a delimited span inside one run. Start and End are byte offsets
// into the run text, End exclusive.
type Match struct {
	Start int
	End   int
	Text  string
}

// locate returns the non-overlapping matches of pattern in text, left to
// right. errNoMatch is returned when there are none.
func locate(pattern *regexp.Regexp, text string) ([]Match, error) {
	indexes := pattern.FindAllStringIndex(text, -1)
	if len(indexes) == 0 {
		return nil, errNoMatch
	}
	matches := make([]Match, 0, len(indexes))
	for _, loc := range indexes {
		matches = append(matches, Match{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]})
	}
	return matches, nil
}
