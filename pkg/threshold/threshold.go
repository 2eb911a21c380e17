package threshold

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// BareMode selects how a range definition consisting of a single number
// is interpreted. The historical plugins disagree on this, so the
// caller has to pick one explicitly.
type BareMode uint8

const (
	// BareMinimum treats a plain number N like "N:", the value alerts
	// once it reaches N.
	BareMinimum BareMode = iota

	// BareEquality alerts only when the value equals N exactly.
	BareEquality
)

// Threshold contains the threshold logic: https://www.monitoring-plugins.org/doc/guidelines.html#THRESHOLDFORMAT
type Threshold struct {
	input   string
	lower   float64
	upper   float64
	outside bool // alert when the value is outside [lower, upper]
}

var (
	regexDigit           = `(-?\d+(\.\d+)?)`
	regexBareNumber      = regexp.MustCompile(fmt.Sprintf(`^%s$`, regexDigit))
	regexLowerToInf      = regexp.MustCompile(fmt.Sprintf(`^%s:$`, regexDigit))
	regexZeroToUpper     = regexp.MustCompile(fmt.Sprintf(`^:%s$`, regexDigit))
	regexMinusInfToUpper = regexp.MustCompile(fmt.Sprintf(`^~:%s$`, regexDigit))
	regexLowToHigh       = regexp.MustCompile(fmt.Sprintf(`^%s:%s$`, regexDigit, regexDigit))
	minFloat64           = float64(math.MinInt64)

	// ErrRangeInverted is returned when the lower bound is bigger than the upper bound
	ErrRangeInverted = errors.New("lower bound is bigger than upper bound")
)

// String prints the Threshold
func (t *Threshold) String() string {
	if t == nil {
		return ""
	}

	return t.input
}

// Parse constructs a new Threshold from a range definition, returns a
// Threshold if possible else nil and an error
func Parse(def string, mode BareMode) (*Threshold, error) {
	def = strings.TrimSpace(def)
	if def == "" {
		return nil, fmt.Errorf("empty threshold given")
	}

	input := def
	inverted := false
	if strings.HasPrefix(def, "@") {
		inverted = true
		def = strings.TrimPrefix(def, "@")
	}

	if bare := regexBareNumber.FindString(def); bare != "" {
		num, err := strconv.ParseFloat(bare, 64)
		if err != nil {
			return nil, fmt.Errorf("threshold parse error: %s", err.Error())
		}
		upper := num
		if mode == BareMinimum {
			upper = math.MaxFloat64
		}

		// bare numbers alert inside the range, the @ prefix flips that
		return &Threshold{input: input, lower: num, upper: upper, outside: inverted}, nil
	}

	if lowerToInf := regexLowerToInf.FindStringSubmatch(def); len(lowerToInf) == 3 {
		if x, err := strconv.ParseFloat(lowerToInf[1], 64); err == nil {
			return &Threshold{input: input, lower: x, upper: math.MaxFloat64, outside: !inverted}, nil
		}
	}
	if zeroToUpper := regexZeroToUpper.FindStringSubmatch(def); len(zeroToUpper) == 3 {
		if x, err := strconv.ParseFloat(zeroToUpper[1], 64); err == nil {
			return &Threshold{input: input, lower: 0, upper: x, outside: !inverted}, nil
		}
	}
	if minusInfToUpper := regexMinusInfToUpper.FindStringSubmatch(def); len(minusInfToUpper) == 3 {
		if x, err := strconv.ParseFloat(minusInfToUpper[1], 64); err == nil {
			return &Threshold{input: input, lower: minFloat64, upper: x, outside: !inverted}, nil
		}
	}
	if lowToHigh := regexLowToHigh.FindStringSubmatch(def); len(lowToHigh) == 5 {
		low, err := strconv.ParseFloat(lowToHigh[1], 64)
		if err != nil {
			return nil, fmt.Errorf("threshold parse error: %s", err.Error())
		}
		high, err := strconv.ParseFloat(lowToHigh[3], 64)
		if err != nil {
			return nil, fmt.Errorf("threshold parse error: %s", err.Error())
		}
		if low > high {
			return nil, ErrRangeInverted
		}

		return &Threshold{input: input, lower: low, upper: high, outside: !inverted}, nil
	}

	return nil, fmt.Errorf("threshold syntax not supported: %s", input)
}

// Alerting tests if the given value triggers an alert.
// A nil threshold (no range configured) never alerts.
func (t *Threshold) Alerting(value float64) bool {
	if t == nil {
		return false
	}

	inside := value >= t.lower && value <= t.upper
	if t.outside {
		return !inside
	}

	return inside
}
