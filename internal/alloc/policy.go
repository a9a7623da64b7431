package alloc

// Policy selects how Pool.Allocate picks a victim gap (spec.md §4.4).
type Policy int

const (
	// FirstFit selects the first sufficient gap in address order.
	FirstFit Policy = iota
	// BestFit selects the smallest sufficient gap, lowest base on ties.
	BestFit
)

func (p Policy) String() string {
	switch p {
	case FirstFit:
		return "first_fit"
	case BestFit:
		return "best_fit"
	default:
		return "unknown"
	}
}

// ParsePolicy parses the two accepted policy names (spec.md §6).
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "first_fit", "FIRST_FIT", "firstfit":
		return FirstFit, true
	case "best_fit", "BEST_FIT", "bestfit":
		return BestFit, true
	default:
		return 0, false
	}
}
