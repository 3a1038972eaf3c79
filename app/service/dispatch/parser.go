package dispatch

import (
	"regexp"
	"strings"
)

// Request is one tool invocation extracted from LLM output. Ephemeral: it is
// consumed by the executor and never persisted.
type Request struct {
	Tool string
	Arg  string
	// span of the marker in the source text
	Start int
	End   int
}

// markerPattern matches the wire-level tag grammar [TOOLNAME:ARGUMENT].
// The argument runs verbatim to the first ']'; it may be omitted entirely
// ([MEMO_LIST]). No nesting, no escaping.
var markerPattern = regexp.MustCompile(`\[([A-Z][A-Z0-9_]*)(?::([^\]]*))?\]`)

// Parse extracts tool requests from LLM output, matching tag names
// case-sensitively against known. Unknown names are not an error: the tag
// stays in the residual text as-is, so hallucinated tools degrade into
// visible text instead of breaking the turn. Pure function: same input,
// same output.
func Parse(text string, known func(string) bool) ([]Request, string) {
	var (
		requests []Request
		residual strings.Builder
		last     int
	)

	for _, m := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		if !known(name) {
			continue
		}

		arg := ""
		if m[4] >= 0 {
			arg = text[m[4]:m[5]]
		}

		requests = append(requests, Request{
			Tool:  name,
			Arg:   arg,
			Start: m[0],
			End:   m[1],
		})

		residual.WriteString(text[last:m[0]])
		last = m[1]
	}

	if len(requests) == 0 {
		return nil, text
	}

	residual.WriteString(text[last:])

	return requests, residual.String()
}
