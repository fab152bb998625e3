package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/bitpack/errors"
)

// Annotation is the parsed per-field option list.
//
// Recognized options, separated by commas and optionally wrapped in braces:
//
//	r | rw | w          access mode (default rw)
//	bit: N              single bit position
//	bits: A..B          half-open bit range
//	bits: A..=B         closed bit range
//	stride := N         distance between repeated instances, N > 0
//
// Values may follow ":", "=" or ":=".
type Annotation struct {
	Range     *Range
	Stride    uint
	Access    Access
	AccessSet bool
}

// ParseAnnotation parses an annotation string. An empty string yields the
// defaults.
func ParseAnnotation(src string) (Annotation, error) {
	var a Annotation

	s := strings.TrimSpace(src)
	if strings.HasPrefix(s, "{") {
		if !strings.HasSuffix(s, "}") {
			return a, errors.MalformedAnnotation(nil, src, "unbalanced braces")
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return a, nil
	}

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, hasValue := splitOption(item)

		switch key {
		case "r", "rw", "w":
			if hasValue {
				return a, errors.MalformedAnnotation(nil, src, "access mode "+key+" takes no value")
			}
			if a.AccessSet {
				return a, errors.MalformedAnnotation(nil, src, "field is already specified as "+a.Access.String())
			}
			a.AccessSet = true
			switch key {
			case "r":
				a.Access = AccessRead
			case "w":
				a.Access = AccessWrite
			default:
				a.Access = AccessReadWrite
			}

		case "bit":
			if a.Range != nil {
				return a, errors.MalformedAnnotation(nil, src, "bit position is already specified")
			}
			if !hasValue {
				return a, errors.MalformedAnnotation(nil, src, "'bit' should be followed by a position")
			}
			n, err := parseInt(value)
			if err != nil {
				return a, errors.MalformedAnnotation(nil, src, "invalid bit position "+strconv.Quote(value))
			}
			a.Range = &Range{Start: n, End: n + 1}

		case "bits":
			if a.Range != nil {
				return a, errors.MalformedAnnotation(nil, src, "bit range is already specified")
			}
			if !hasValue {
				return a, errors.MalformedAnnotation(nil, src, "'bits' should be followed by a range")
			}
			r, err := parseRange(value)
			if err != nil {
				return a, errors.MalformedAnnotation(nil, src, err.Error())
			}
			a.Range = &r

		case "stride":
			if a.Stride != 0 {
				return a, errors.MalformedAnnotation(nil, src, "stride is already specified")
			}
			if !hasValue {
				return a, errors.MalformedAnnotation(nil, src, "'stride' should be followed by '='")
			}
			n, err := parseInt(value)
			if err != nil {
				return a, errors.MalformedAnnotation(nil, src, "invalid stride "+strconv.Quote(value))
			}
			if n == 0 {
				return a, errors.MalformedAnnotation(nil, src, "a stride of 0 is illegal")
			}
			a.Stride = n

		default:
			return a, errors.MalformedAnnotation(nil, src, "unknown option "+strconv.Quote(key))
		}
	}
	return a, nil
}

// splitOption splits "key: value", "key = value" and "key := value".
func splitOption(item string) (key, value string, ok bool) {
	i := strings.IndexAny(item, ":=")
	if i < 0 {
		return item, "", false
	}
	key = strings.TrimSpace(item[:i])
	rest := item[i+1:]
	if item[i] == ':' && strings.HasPrefix(rest, "=") {
		rest = rest[1:]
	}
	return key, strings.TrimSpace(rest), true
}

func parseInt(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 0, 16)
	return uint(n), err
}

// parseRange parses "A..B" (exclusive) or "A..=B" (inclusive).
func parseRange(s string) (Range, error) {
	start, end, found := strings.Cut(s, "..")
	if !found {
		return Range{}, fmt.Errorf("invalid bit range %q, expected A..B or A..=B", s)
	}
	inclusive := strings.HasPrefix(end, "=")
	if inclusive {
		end = end[1:]
	}

	a, err := parseInt(strings.TrimSpace(start))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range start %q", start)
	}
	b, err := parseInt(strings.TrimSpace(end))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range end %q", end)
	}
	if inclusive {
		b++
	}
	if b <= a {
		return Range{}, fmt.Errorf("empty bit range %q", s)
	}
	return Range{Start: a, End: b}, nil
}
