package classify

import "fmt"

// Gate selects which relevance predicate a source applies to its candidates.
type Gate string

const (
	GateCrime    Gate = "crime"
	GateOfficial Gate = "official"
)

// Allows applies the gate's predicate to text.
func (g Gate) Allows(text string) bool {
	if g == GateOfficial {
		return IsOfficialRelated(text)
	}
	return IsCrimeRelated(text)
}

// ParseGate accepts "crime" or "official"; empty means crime.
func ParseGate(s string) (Gate, error) {
	switch Gate(s) {
	case "", GateCrime:
		return GateCrime, nil
	case GateOfficial:
		return GateOfficial, nil
	default:
		return "", fmt.Errorf("unknown relevance gate %q", s)
	}
}
