package checknginx

import (
	"context"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/consol-monitoring/monitoring-plugins-go/pkg/counter"
	"github.com/consol-monitoring/monitoring-plugins-go/pkg/plugin"
	"github.com/consol-monitoring/monitoring-plugins-go/pkg/threshold"
)

const (
	// DefaultURL is the conventional location of the stub status page
	DefaultURL = "/nginx_status"

	// DefaultTimeout bounds the status page fetch in seconds
	DefaultTimeout = int64(10)
)

// Check scrapes the nginx stub status page, derives per second rates
// from the previous run and applies thresholds on the number of
// active connections.
type Check struct {
	Hostname     string
	Port         int64
	URL          string
	Warning      string
	Critical     string
	NoKeepalives bool // fail when handled drops below requests
	Timeout      int64
	Store        counter.Store

	now func() time.Time
}

// Run executes the check, every failure maps to a plugin state
func (c *Check) Run(ctx context.Context) *plugin.CheckResult {
	c.applyDefaults()

	if c.Port <= 0 {
		return plugin.Unknown("no port given")
	}

	var warn, crit *threshold.Threshold
	var err error
	if c.Warning != "" {
		warn, err = threshold.Parse(c.Warning, threshold.BareEquality)
		if err != nil {
			return plugin.Unknown("invalid warning threshold: %s", err.Error())
		}
	}
	if c.Critical != "" {
		crit, err = threshold.Parse(c.Critical, threshold.BareEquality)
		if err != nil {
			return plugin.Unknown("invalid critical threshold: %s", err.Error())
		}
	}

	body, err := c.fetch(ctx)
	if err != nil {
		// connectivity is the monitored condition
		return plugin.Critical("%s", err.Error())
	}

	status, err := parseStubStatus(body)
	if err != nil {
		return plugin.Unknown("%s", err.Error())
	}

	rates := c.updateRates(status)

	result := &plugin.CheckResult{State: plugin.StateOK}

	switch {
	case status.accepts < status.handled:
		result.State = plugin.StateCritical
		result.Output = fmt.Sprintf("CRITICAL: accepted connections (%d) less than handled connections (%d)",
			status.accepts, status.handled)
	case c.NoKeepalives && status.handled < status.requests:
		result.State = plugin.StateCritical
		result.Output = fmt.Sprintf("CRITICAL: handled connections (%d) less than requests (%d) without keepalives",
			status.handled, status.requests)
	default:
		value := float64(status.active)
		result.State = plugin.Reduce(
			plugin.Verdict{State: plugin.StateCritical, Alerting: crit.Alerting(value)},
			plugin.Verdict{State: plugin.StateWarning, Alerting: warn.Alerting(value)},
		)
		result.Output = fmt.Sprintf(
			"%s: Active connections = %d, Connections/sec = %s, Requests/sec = %s, Reading = %d, Writing = %d, Accepted = %d, Handled = %d, Requests = %d",
			result.StateString(), status.active,
			formatRate(rates["accepts"]), formatRate(rates["requests"]),
			status.reading, status.writing,
			status.accepts, status.handled, status.requests)
	}

	result.Metrics = []*plugin.CheckMetric{
		{Name: "port", Value: c.Port},
		{Name: "active_connections", Value: status.active, Warning: warn.String(), Critical: crit.String()},
		{Name: "connections_per_sec", Value: rates["accepts"]},
		{Name: "requests_per_sec", Value: rates["requests"]},
		{Name: "reading", Value: status.reading},
		{Name: "writing", Value: status.writing},
		{Name: "accepted", Value: status.accepts},
		{Name: "handled", Value: status.handled},
		{Name: "requests", Value: status.requests},
	}

	return result
}

func (c *Check) applyDefaults() {
	if c.Hostname == "" {
		c.Hostname = "localhost"
	}
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Store == nil {
		c.Store = counter.NewFileStore("")
	}
	if c.now == nil {
		c.now = time.Now
	}
}

// fetch retrieves the raw status page with a bounded timeout
func (c *Check) fetch(ctx context.Context) (string, error) {
	timeout := time.Duration(c.Timeout) * time.Second
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Dial: (&net.Dialer{
				Timeout: timeout,
			}).Dial,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       timeout,
		},
	}

	url := fmt.Sprintf("http://%s:%d%s", c.Hostname, c.Port, c.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("new request: %s", err.Error())
	}

	plugin.Log.Tracef("http GET %s", url)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http fetch failed %s: %s", url, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http fetch failed %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("http fetch failed %s: %s", url, err.Error())
	}

	return string(body), nil
}

// updateRates derives per second rates from the previous stored
// observation and persists the current one as the next baseline. State
// io failures degrade to a rate of 0, they never fail the run.
func (c *Check) updateRates(status *stubStatus) map[string]float64 {
	key := counter.Key("check_nginx_status", c.Hostname, strconv.FormatInt(c.Port, 10), c.URL)

	prev, err := c.Store.Load(key)
	if err != nil {
		plugin.Log.Warnf("discarding unreadable state: %s", err.Error())
		prev = nil
	}

	curr := counter.NewObservation(c.now().Unix())
	curr.Counters["accepts"] = status.accepts
	curr.Counters["requests"] = status.requests

	// always persist so the next run has a baseline
	if err := c.Store.Save(key, curr); err != nil {
		plugin.Log.Warnf("cannot persist state: %s", err.Error())
	}

	rates := counter.Rates(prev, curr)
	for name, rate := range rates {
		rates[name] = math.Round(rate*100) / 100
	}

	return rates
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
