package plugin

import (
	"fmt"
	"os"
	"strings"
)

const (
	// StateOK is used for normal exits.
	StateOK = int64(0)

	// StateWarning is used for warnings.
	StateWarning = int64(1)

	// StateCritical is used for critical errors.
	StateCritical = int64(2)

	// StateUnknown is used for when the check runs into a problem itself.
	StateUnknown = int64(3)
)

// CheckResult is the result of a single check run.
type CheckResult struct {
	State   int64
	Output  string
	Metrics []*CheckMetric
}

// Unknown builds a CheckResult for a failed check run
func Unknown(format string, args ...interface{}) *CheckResult {
	return &CheckResult{
		State:  StateUnknown,
		Output: fmt.Sprintf("UNKNOWN: "+format, args...),
	}
}

// Critical builds a CheckResult for a critical condition
func Critical(format string, args ...interface{}) *CheckResult {
	return &CheckResult{
		State:  StateCritical,
		Output: fmt.Sprintf("CRITICAL: "+format, args...),
	}
}

func (cr *CheckResult) StateString() string {
	switch cr.State {
	case StateOK:
		return "OK"
	case StateWarning:
		return "WARNING"
	case StateCritical:
		return "CRITICAL"
	}

	return "UNKNOWN"
}

// EscalateStatus raises the state if the given one is more severe
func (cr *CheckResult) EscalateStatus(state int64) {
	if state > cr.State {
		cr.State = state
	}
}

// BuildPluginOutput returns the final status line including perfdata
func (cr *CheckResult) BuildPluginOutput() []byte {
	output := []byte(cr.Output)
	if len(cr.Metrics) > 0 {
		perf := make([]string, 0, len(cr.Metrics))
		for _, m := range cr.Metrics {
			perf = append(perf, m.String())
		}
		output = append(output, []byte(" | ")...)
		output = append(output, []byte(strings.Join(perf, " "))...)
	}

	return output
}

// PrintExit writes the status line to stdout and exits with the
// state as plugin exit code
func (cr *CheckResult) PrintExit() {
	fmt.Fprintf(os.Stdout, "%s\n", cr.BuildPluginOutput())
	os.Exit(int(cr.State))
}
