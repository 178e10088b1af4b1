package registry

import (
	"fmt"
	"io"

	"amq/internal/cuckoo"
	"amq/internal/filter"
	"amq/internal/quotient"
)

// Field is one named parameter of a filter.
type Field struct {
	Name  string
	Value string
}

// Describe lists the sizing parameters and load of f.
func Describe(f filter.Filter) []Field {
	kind, err := KindOf(f)
	if err != nil {
		return []Field{{"kind", err.Error()}}
	}

	fields := []Field{
		{"kind", kind.String()},
		{"items", fmt.Sprint(f.Len())},
	}
	switch f := f.(type) {
	case *cuckoo.Filter:
		fields = append(fields, describeCuckoo(f)...)
	case *cuckoo.ScalableFilter:
		fields = append(fields,
			Field{"generations", fmt.Sprint(f.GenerationCount())},
			Field{"slots", fmt.Sprint(f.Capacity())},
		)
		for i := 0; i < f.GenerationCount(); i++ {
			g := f.Generation(i)
			fields = append(fields, Field{
				fmt.Sprintf("generation %d", i),
				fmt.Sprintf("items=%d slots=%d fingerprint=%d bits fpp=%.6f",
					g.Len(), g.Capacity(), g.FingerprintBits(), g.EstimatedFPP()),
			})
		}
	case *quotient.Filter:
		fields = append(fields,
			Field{"quotient bits", fmt.Sprint(f.QuotientBits())},
			Field{"remainder bits", fmt.Sprint(f.RemainderBits())},
			Field{"slots", fmt.Sprint(f.Capacity())},
			Field{"load", load(f.Len(), f.Capacity())},
		)
	}
	return append(fields, Field{"estimated fpp", fmt.Sprintf("%.6f", f.EstimatedFPP())})
}

func describeCuckoo(f *cuckoo.Filter) []Field {
	return []Field{
		{"expected items", fmt.Sprint(f.ExpectedItems())},
		{"buckets", fmt.Sprint(f.BucketCount())},
		{"bucket size", fmt.Sprint(f.BucketSize())},
		{"slots", fmt.Sprint(f.Capacity())},
		{"fingerprint bits", fmt.Sprint(f.FingerprintBits())},
		{"max kicks", fmt.Sprint(f.MaxKicks())},
		{"load", load(f.Len(), f.Capacity())},
	}
}

func load(n, capacity int) string {
	return fmt.Sprintf("%.2f%%", 100*float64(n)/float64(capacity))
}

// Print writes fields as an aligned two-column table.
func Print(w io.Writer, fields []Field) {
	for _, field := range fields {
		fmt.Fprintf(w, "%-18s %s\n", field.Name+":", field.Value)
	}
}
