package extraction

import (
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single long-span pattern match.
const DefaultMatchTimeout = 250 * time.Millisecond

// longPattern is a backtracking pattern used where a capture must stop at a
// lookahead terminator or span more than the standard engine's repeat limit.
type longPattern struct {
	re *regexp2.Regexp
}

// compileLong compiles a case-insensitive pattern with a match timeout.
func compileLong(expr string, timeout time.Duration) longPattern {
	re := regexp2.MustCompile(expr, regexp2.IgnoreCase)
	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}
	re.MatchTimeout = timeout
	return longPattern{re: re}
}

// find returns the first capture group when the pattern has one that
// participated, otherwise the whole match. A timeout counts as no match.
func (p longPattern) find(text string) (string, bool) {
	m, err := p.re.FindStringMatch(text)
	if err != nil || m == nil {
		return "", false
	}
	if g := m.GroupByNumber(1); g != nil && len(g.Captures) > 0 {
		return g.String(), true
	}
	return m.String(), true
}
