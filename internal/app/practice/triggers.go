package practice

import "strings"

// terminationTriggers are the exact phrases that end the session. Matching
// is exact after trimming: "종료요" does not end a session.
var terminationTriggers = map[string]struct{}{
	"종료": {},
	"끝":  {},
	"그만": {},
}

// IsTerminal reports whether text is an end-of-session trigger phrase.
func IsTerminal(text string) bool {
	_, ok := terminationTriggers[strings.TrimSpace(text)]
	return ok
}
