package common

import "fmt"

// Kind identifies a filter family in snapshots and tooling.
type Kind uint8

const (
	KindCuckoo Kind = iota + 1
	KindScalableCuckoo
	KindQuotient
	KindBloom
)

var kindNames = map[Kind]string{
	KindCuckoo:         "cuckoo",
	KindScalableCuckoo: "scalable-cuckoo",
	KindQuotient:       "quotient",
	KindBloom:          "bloom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a name produced by Kind.String back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown filter kind %q", name)
}
