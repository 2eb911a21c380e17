package plugin

import (
	"bytes"
	"fmt"
	"strconv"
)

// CheckMetric contains a single performance value.
type CheckMetric struct {
	Name     string
	Unit     string
	Value    interface{}
	Warning  string // raw warning range, copied into the perfdata verbatim
	Critical string // raw critical range, copied into the perfdata verbatim
	Min      *float64
	Max      *float64
}

// String returns the metric in the perfdata format
// name=value[unit];warn;crit;min;max, empty annotations stay empty but
// all separators are kept so graphing tools see a fixed field layout
func (m *CheckMetric) String() string {
	var res bytes.Buffer

	fmt.Fprintf(&res, "%s=%s%s", m.Name, num2String(m.Value), m.Unit)

	res.WriteString(";")
	res.WriteString(m.Warning)

	res.WriteString(";")
	res.WriteString(m.Critical)

	res.WriteString(";")
	if m.Min != nil {
		res.WriteString(strconv.FormatFloat(*m.Min, 'f', -1, 64))
	}

	res.WriteString(";")
	if m.Max != nil {
		res.WriteString(strconv.FormatFloat(*m.Max, 'f', -1, 64))
	}

	return res.String()
}

// num2String converts a numeric value into the shortest possible string
func num2String(val interface{}) string {
	switch num := val.(type) {
	case float64:
		return strconv.FormatFloat(num, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(num), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}
