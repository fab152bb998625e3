package schema

// Kind tags the shape of a logical type.
type Kind uint8

const (
	KindBool Kind = iota
	KindUint
	KindArbUint
	KindEnum
	KindRecord
	KindTuple
	KindOption
	KindRef
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindUint:    "uint",
	KindArbUint: "arbitrary-uint",
	KindEnum:    "enum",
	KindRecord:  "record",
	KindTuple:   "tuple",
	KindOption:  "option",
	KindRef:     "ref",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsInteger reports whether the kind is packed as a plain unsigned integer.
func (k Kind) IsInteger() bool {
	return k == KindUint || k == KindArbUint
}

// IsComposite reports whether the kind is built from other types.
func (k Kind) IsComposite() bool {
	return k == KindTuple || k == KindOption
}
