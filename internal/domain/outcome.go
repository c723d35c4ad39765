package domain

// Outcome is the market resolution code stored on-chain as uint8.
type Outcome int

// List of possible market outcomes
const (
	OutcomePending      Outcome = 0
	OutcomeOnTime       Outcome = 1
	OutcomeDelayedShort Outcome = 2
	OutcomeDelayedLong  Outcome = 3
	OutcomeCancelled    Outcome = 4
)

// Delay thresholds in minutes
const (
	DelayShortThreshold = 30
	DelayLongThreshold  = 120
)

var allowedOutcomes = [...]Outcome{
	OutcomePending, OutcomeOnTime, OutcomeDelayedShort, OutcomeDelayedLong, OutcomeCancelled,
}

// Valid checks if the Outcome is one of the known codes.
func (o Outcome) Valid() bool {
	for _, v := range allowedOutcomes {
		if o == v {
			return true
		}
	}
	return false
}

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "PENDING"
	case OutcomeOnTime:
		return "ON_TIME"
	case OutcomeDelayedShort:
		return "DELAYED_SHORT"
	case OutcomeDelayedLong:
		return "DELAYED_LONG"
	case OutcomeCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Classify maps a matched flight and its delay in minutes to an outcome.
// Cancellation dominates any delay value. A nil match yields OutcomePending;
// the no-data policy for past flights lives in the resolver, not here.
func Classify(match *FlightMatch, delayMinutes int) Outcome {
	switch {
	case match == nil:
		return OutcomePending
	case match.Cancelled():
		return OutcomeCancelled
	case delayMinutes >= DelayLongThreshold:
		return OutcomeDelayedLong
	case delayMinutes >= DelayShortThreshold:
		return OutcomeDelayedShort
	default:
		return OutcomeOnTime
	}
}
