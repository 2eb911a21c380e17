package checknginx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/consol-monitoring/monitoring-plugins-go/pkg/counter"
	"github.com/consol-monitoring/monitoring-plugins-go/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubStatusBody(active int64, accepts, handled, requests uint64) string {
	return fmt.Sprintf("Active connections: %d \nserver accepts handled requests\n %d %d %d \nReading: 1 Writing: 2 Waiting: 0 \n",
		active, accepts, handled, requests)
}

// statusServer runs a test http server answering with the given body
// and returns a prepared Check pointing at it
func statusServer(t *testing.T, body string) (*Check, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(res, body)
	}))
	t.Cleanup(server.Close)

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(parsed.Host)
	require.NoError(t, err)
	port, err := strconv.ParseInt(portStr, 10, 64)
	require.NoError(t, err)

	check := &Check{
		Hostname: host,
		Port:     port,
		Store:    counter.NewMemStore(),
	}

	return check, server
}

func TestCheckFirstRun(t *testing.T) {
	t.Parallel()

	check, _ := statusServer(t, stubStatusBody(3, 100, 90, 150))
	check.Warning = "10"
	check.Critical = "20"

	res := check.Run(context.Background())
	assert.Equal(t, plugin.StateOK, res.State)
	assert.Equal(t, "OK: Active connections = 3, Connections/sec = 0, Requests/sec = 0, Reading = 1, Writing = 2, Accepted = 100, Handled = 90, Requests = 150", res.Output)

	perf := string(res.BuildPluginOutput())
	assert.Contains(t, perf, "connections_per_sec=0;;;;")
	assert.Contains(t, perf, "requests_per_sec=0;;;;")
	assert.Contains(t, perf, "active_connections=3;10;20;;")
	assert.Contains(t, perf, fmt.Sprintf("port=%d;;;;", check.Port))
}

func TestCheckRates(t *testing.T) {
	t.Parallel()

	check, _ := statusServer(t, stubStatusBody(3, 150, 150, 250))
	check.now = func() time.Time { return time.Unix(110, 0) }

	prev := counter.NewObservation(100)
	prev.Counters["accepts"] = 50
	prev.Counters["requests"] = 50
	key := counter.Key("check_nginx_status", check.Hostname, strconv.FormatInt(check.Port, 10), DefaultURL)
	require.NoError(t, check.Store.Save(key, prev))

	res := check.Run(context.Background())
	assert.Equal(t, plugin.StateOK, res.State)
	assert.Contains(t, res.Output, "Connections/sec = 10,")
	assert.Contains(t, res.Output, "Requests/sec = 20,")

	// current counters replaced the baseline
	stored, err := check.Store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), stored.Counters["accepts"])
	assert.Equal(t, int64(110), stored.Timestamp)
}

func TestCheckCounterReset(t *testing.T) {
	t.Parallel()

	check, _ := statusServer(t, stubStatusBody(3, 30, 30, 40))
	check.now = func() time.Time { return time.Unix(110, 0) }

	prev := counter.NewObservation(100)
	prev.Counters["accepts"] = 50
	prev.Counters["requests"] = 50
	key := counter.Key("check_nginx_status", check.Hostname, strconv.FormatInt(check.Port, 10), DefaultURL)
	require.NoError(t, check.Store.Save(key, prev))

	res := check.Run(context.Background())
	assert.Equal(t, plugin.StateOK, res.State)
	assert.Contains(t, res.Output, "Connections/sec = 0,", "counter reset must not yield a negative rate")
}

func TestCheckInconsistentCounters(t *testing.T) {
	t.Parallel()

	check, _ := statusServer(t, stubStatusBody(3, 40, 50, 60))
	check.Warning = "1000"
	check.Critical = "2000"

	res := check.Run(context.Background())
	assert.Equal(t, plugin.StateCritical, res.State, "guard fires regardless of thresholds")
	assert.Contains(t, res.Output, "accepted connections (40) less than handled connections (50)")
	assert.NotEmpty(t, res.Metrics, "perfdata still emitted")
}

func TestCheckNoKeepalives(t *testing.T) {
	t.Parallel()

	check, _ := statusServer(t, stubStatusBody(3, 100, 90, 100))
	res := check.Run(context.Background())
	assert.Equal(t, plugin.StateOK, res.State, "keepalives allowed, more requests than connections is fine")

	check2, _ := statusServer(t, stubStatusBody(3, 100, 90, 100))
	check2.NoKeepalives = true
	res = check2.Run(context.Background())
	assert.Equal(t, plugin.StateCritical, res.State)
	assert.Contains(t, res.Output, "handled connections (90) less than requests (100)")
}

func TestCheckThresholds(t *testing.T) {
	t.Parallel()

	thresholdToState := []struct {
		warning  string
		critical string
		state    int64
	}{
		{"", "", plugin.StateOK},
		{"15", "", plugin.StateWarning}, // equality mode for bare numbers
		{"16", "", plugin.StateOK},
		{"15", "15", plugin.StateCritical},
		{"@10:20", "", plugin.StateWarning},
		{"10:20", "", plugin.StateOK},
		{"", "@10:20", plugin.StateCritical},
		{":10", "", plugin.StateWarning}, // 15 is above the upper bound
	}

	for _, data := range thresholdToState {
		check, _ := statusServer(t, stubStatusBody(15, 100, 90, 150))
		check.Warning = data.warning
		check.Critical = data.critical
		res := check.Run(context.Background())
		assert.Equalf(t, data.state, res.State, "w=%q c=%q", data.warning, data.critical)
	}
}

func TestCheckInvalidThreshold(t *testing.T) {
	t.Parallel()

	check, _ := statusServer(t, stubStatusBody(3, 100, 90, 150))
	check.Warning = "20:10"
	res := check.Run(context.Background())
	assert.Equal(t, plugin.StateUnknown, res.State)
}

func TestCheckParseFailure(t *testing.T) {
	t.Parallel()

	bodies := []string{
		"<html>not a status page</html>",
		"Active connections: 3",
		"Active connections: 3 \nserver accepts handled requests\n 1 2 3 ",
	}

	for _, body := range bodies {
		check, _ := statusServer(t, body)
		res := check.Run(context.Background())
		assert.Equalf(t, plugin.StateUnknown, res.State, "body %q", body)
	}
}

func TestCheckConnectionFailure(t *testing.T) {
	t.Parallel()

	check, server := statusServer(t, stubStatusBody(3, 100, 90, 150))
	server.Close()

	res := check.Run(context.Background())
	assert.Equal(t, plugin.StateCritical, res.State, "unreachable endpoint is critical")
	assert.Contains(t, res.Output, "CRITICAL")
}

func TestCheckMissingPort(t *testing.T) {
	t.Parallel()

	check := &Check{Store: counter.NewMemStore()}
	res := check.Run(context.Background())
	assert.Equal(t, plugin.StateUnknown, res.State)
}
