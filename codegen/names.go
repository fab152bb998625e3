package codegen

import (
	"strconv"
	"strings"
	"unicode"
)

// methods every generated record declares; fields must not shadow them
var reservedMethods = map[string]bool{
	"Raw":     true,
	"BitSize": true,
	"String":  true,
}

// exported turns a schema identifier into an exported Go identifier:
// "low_power" becomes "LowPower", "f1" becomes "F1".
func exported(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" || !unicode.IsLetter(rune(out[0])) {
		out = "X" + out
	}
	return out
}

// fieldMethod returns the reader name of a field. Unnamed fields use
// Get<index>.
func fieldMethod(name string, index int) string {
	if name == "" {
		return "Get" + strconv.Itoa(index)
	}
	m := exported(name)
	if reservedMethods[m] {
		m += "Field"
	}
	return m
}

// setterMethod returns the mutator name of a field.
func setterMethod(name string, index int) string {
	if name == "" {
		return "With" + strconv.Itoa(index)
	}
	return "With" + fieldMethod(name, index)
}
