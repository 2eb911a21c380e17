package checkusers

import (
	"context"
	"fmt"

	"github.com/consol-monitoring/monitoring-plugins-go/pkg/plugin"
	"github.com/consol-monitoring/monitoring-plugins-go/pkg/threshold"
	"github.com/shirou/gopsutil/v4/host"
)

// UserSource returns the number of currently logged in users
type UserSource func(ctx context.Context) (int64, error)

// Check counts logged in users and compares the count against the
// warning and critical thresholds.
type Check struct {
	Warning  int64
	Critical int64
	Users    UserSource // defaults to the local utmp via gopsutil
}

// Run executes the check and returns the result, it never returns an
// error since every failure maps to a plugin state
func (c *Check) Run(ctx context.Context) *plugin.CheckResult {
	if c.Warning <= 0 || c.Critical <= 0 {
		return plugin.Unknown("warning and critical thresholds must be positive integers")
	}
	if c.Critical < c.Warning {
		return plugin.Unknown("critical threshold must not be lower than warning threshold")
	}

	warn, err := threshold.Parse(fmt.Sprintf("%d", c.Warning), threshold.BareMinimum)
	if err != nil {
		return plugin.Unknown("invalid warning threshold: %s", err.Error())
	}
	crit, err := threshold.Parse(fmt.Sprintf("%d", c.Critical), threshold.BareMinimum)
	if err != nil {
		return plugin.Unknown("invalid critical threshold: %s", err.Error())
	}

	users := c.Users
	if users == nil {
		users = localUsers
	}

	count, err := users(ctx)
	if err != nil {
		return plugin.Unknown("failed to count logged in users: %s", err.Error())
	}

	value := float64(count)
	state := plugin.Reduce(
		plugin.Verdict{State: plugin.StateCritical, Alerting: crit.Alerting(value)},
		plugin.Verdict{State: plugin.StateWarning, Alerting: warn.Alerting(value)},
	)

	result := &plugin.CheckResult{
		State:  state,
		Metrics: []*plugin.CheckMetric{{
			Name:     "users",
			Value:    count,
			Warning:  warn.String(),
			Critical: crit.String(),
		}},
	}
	result.Output = fmt.Sprintf("%s - %d users logged in", result.StateString(), count)

	return result
}

// localUsers counts utmp entries on the local machine
func localUsers(ctx context.Context) (int64, error) {
	users, err := host.UsersWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("user enumeration failed: %s", err.Error())
	}

	return int64(len(users)), nil
}
