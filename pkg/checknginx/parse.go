package checknginx

import (
	"fmt"
	"regexp"
	"strconv"
)

// stubStatus holds the counters of one scrape of the stub status page:
//
//	Active connections: 291
//	server accepts handled requests
//	 16630948 16630948 31070465
//	Reading: 6 Writing: 179 Waiting: 106
type stubStatus struct {
	active   int64
	accepts  uint64
	handled  uint64
	requests uint64
	reading  int64
	writing  int64
	waiting  int64
}

var (
	reActive  = regexp.MustCompile(`Active connections:\s+(\d+)`)
	reServer  = regexp.MustCompile(`server accepts handled requests\s+(\d+)\s+(\d+)\s+(\d+)`)
	reWorkers = regexp.MustCompile(`Reading:\s*(\d+)\s*Writing:\s*(\d+)\s*Waiting:\s*(\d+)`)
)

// parseStubStatus extracts all counters from the status page body,
// any missing or non-numeric field is an error
func parseStubStatus(body string) (*stubStatus, error) {
	status := &stubStatus{}

	active := reActive.FindStringSubmatch(body)
	if len(active) != 2 {
		return nil, fmt.Errorf("no active connections found in status page")
	}
	server := reServer.FindStringSubmatch(body)
	if len(server) != 4 {
		return nil, fmt.Errorf("no server accepts/handled/requests counters found in status page")
	}
	workers := reWorkers.FindStringSubmatch(body)
	if len(workers) != 4 {
		return nil, fmt.Errorf("no reading/writing/waiting counters found in status page")
	}

	var err error
	if status.active, err = strconv.ParseInt(active[1], 10, 64); err != nil {
		return nil, fmt.Errorf("active connections not numeric: %s", err.Error())
	}
	if status.accepts, err = strconv.ParseUint(server[1], 10, 64); err != nil {
		return nil, fmt.Errorf("accepts counter not numeric: %s", err.Error())
	}
	if status.handled, err = strconv.ParseUint(server[2], 10, 64); err != nil {
		return nil, fmt.Errorf("handled counter not numeric: %s", err.Error())
	}
	if status.requests, err = strconv.ParseUint(server[3], 10, 64); err != nil {
		return nil, fmt.Errorf("requests counter not numeric: %s", err.Error())
	}
	if status.reading, err = strconv.ParseInt(workers[1], 10, 64); err != nil {
		return nil, fmt.Errorf("reading counter not numeric: %s", err.Error())
	}
	if status.writing, err = strconv.ParseInt(workers[2], 10, 64); err != nil {
		return nil, fmt.Errorf("writing counter not numeric: %s", err.Error())
	}
	if status.waiting, err = strconv.ParseInt(workers[3], 10, 64); err != nil {
		return nil, fmt.Errorf("waiting counter not numeric: %s", err.Error())
	}

	return status, nil
}
