package plugin

// Verdict is one threshold comparison outcome tagged with the state it
// stands for when it fires.
type Verdict struct {
	State    int64
	Alerting bool
}

// Reduce combines independently computed verdicts into the final state.
// The most severe alerting verdict wins, without any alert the result
// is OK. Callers list the critical verdict first so the precedence is
// visible at the call site.
func Reduce(verdicts ...Verdict) int64 {
	state := StateOK
	for _, verdict := range verdicts {
		if verdict.Alerting && verdict.State > state {
			state = verdict.State
		}
	}

	return state
}
