package counter

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Store persists the previous observation of a check target between
// runs. Load returns nil without error when no observation exists yet.
type Store interface {
	Load(key string) (*Observation, error)
	Save(key string, obs *Observation) error
}

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Key builds a filesystem safe store key from the given parts, usually
// host, port and endpoint path. Distinct targets map to distinct keys
// so multiple checks on one machine never share a state record.
func Key(parts ...string) string {
	return keySanitizer.ReplaceAllString(strings.Join(parts, "_"), "_")
}

// FileStore keeps one state file per key below a spool directory.
// There is no locking, concurrent runs against the same key race
// last-write-wins.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore below dir, empty dir means the
// system temp directory
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = os.TempDir()
	}

	return &FileStore{dir: dir}
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, Key(key))
}

// Load reads the observation stored for key, nil if there is none
func (f *FileStore) Load(key string) (*Observation, error) {
	raw, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read state %s: %s", f.path(key), err.Error())
	}

	return parseState(raw)
}

// Save overwrites the state record for key with the given observation
func (f *FileStore) Save(key string, obs *Observation) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "time: %d\n", obs.Timestamp)

	names := make([]string, 0, len(obs.Counters))
	for name := range obs.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&buf, "%s: %d\n", name, obs.Counters[name])
	}

	err := os.WriteFile(f.path(key), buf.Bytes(), 0o644)
	if err != nil {
		return fmt.Errorf("write state %s: %s", f.path(key), err.Error())
	}

	return nil
}

func parseState(raw []byte) (*Observation, error) {
	obs := NewObservation(0)
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("malformed state line: %s", line)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "time" {
			num, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed state timestamp: %s", value)
			}
			obs.Timestamp = num

			continue
		}
		num, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed state counter %s: %s", name, value)
		}
		obs.Counters[name] = num
	}

	return obs, nil
}

// MemStore is an in-memory Store used in tests
type MemStore struct {
	observations map[string]*Observation
}

// NewMemStore creates an empty MemStore
func NewMemStore() *MemStore {
	return &MemStore{observations: make(map[string]*Observation)}
}

// Load returns the stored observation for key or nil
func (m *MemStore) Load(key string) (*Observation, error) {
	return m.observations[Key(key)], nil
}

// Save replaces the stored observation for key
func (m *MemStore) Save(key string, obs *Observation) error {
	m.observations[Key(key)] = obs

	return nil
}
