package domain

// Submission reports whether the resolved outcome reached the chain.
type Submission struct {
	Chain     string
	TxHash    string
	Submitted bool
}

// ResolutionResult is the output bundle of one resolve call.
type ResolutionResult struct {
	MarketID     string
	Flight       *FlightMatch
	Outcome      Outcome
	DelayMinutes int
	Submission   Submission
}
