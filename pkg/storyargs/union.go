package storyargs

import (
	"regexp"
	"strings"
)

// unionPattern recognizes the serialized string-literal unions emitted by
// the metadata extractor, e.g. 'primary' | 'secondary'. It is a heuristic
// over the type string, not a type parser.
var unionPattern = regexp.MustCompile(`'(?:[a-zA-Z0-9$]+' \|)+`)

// ParseUnion returns the literal members of a string-literal union type.
//
// Members keep their declared order and are neither sorted nor
// deduplicated. A union that mixes literals with other types ('a' | number)
// is not a string-literal union and is reported as no match.
func ParseUnion(typeName string) ([]string, bool) {
	if !unionPattern.MatchString(typeName) {
		return nil, false
	}

	parts := strings.Split(typeName, "|")
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		literal, ok := unquote(strings.TrimSpace(part))
		if !ok {
			return nil, false
		}
		options = append(options, literal)
	}
	return options, true
}

func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", false
	}
	return s[1 : len(s)-1], true
}
