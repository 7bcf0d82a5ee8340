package format

// Spec selects a formatter per field for table output. Fields not listed use
// Default, or Raw when Default is nil.
type Spec struct {
	Fields  map[string]Func
	Default Func
}

// Cell formats value as the cell of field. A nil Spec renders raw values.
func (s *Spec) Cell(field string, value any) string {
	if s == nil {
		return Raw(value)
	}
	if fn, ok := s.Fields[field]; ok {
		return fn(value)
	}
	if s.Default != nil {
		return s.Default(value)
	}
	return Raw(value)
}

// Convention says how an upstream field stores a percentage.
type Convention int

const (
	// Fraction fields hold 0.05 for 5%.
	Fraction Convention = iota + 1
	// Points fields hold 5 for 5%.
	Points
)

// PercentConventions records, for every percentage field a command formats,
// which scale the data source uses. Yahoo mixes both scales, so the scale is
// never inferred from the magnitude of a value.
var PercentConventions = map[string]Convention{
	"yearChange":  Fraction,
	"pctHeld":     Fraction,
	"pctChange":   Fraction,
	"Surprise(%)": Points,
}

// PercentOf returns the percentage formatter for field. Fields missing from
// PercentConventions are rendered as plain text.
func PercentOf(field string) Func {
	switch PercentConventions[field] {
	case Fraction:
		return Percent
	case Points:
		return PercentPoints
	default:
		return String
	}
}
