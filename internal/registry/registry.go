// Package registry loads the static OU → backend mapping for a run.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// BackendKind selects which system of record services an OU
type BackendKind string

const (
	// OnPrem is the on-premise ERP (Oracle EBS) backend
	OnPrem BackendKind = "EBS"
	// CloudHybrid is the cloud WMS + Fusion pair
	CloudHybrid BackendKind = "CLOUD_HYBRID"
)

// DefaultBackend is used when the registry file does not name one
const DefaultBackend = OnPrem

// ParseBackendKind normalizes a registry label. Anything that is not an
// on-prem label is serviced by the cloud pair. An empty label returns ok=false.
func ParseBackendKind(label string) (BackendKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "":
		return "", false
	case "EBS", "ONPREM", "ON_PREM", "ON-PREM":
		return OnPrem, true
	default:
		return CloudHybrid, true
	}
}

// Entry is one OU and the backend that services it
type Entry struct {
	Name    string
	Backend BackendKind

	// Label is the backend as written in the registry file. Backend is
	// used for routing; Label is what reports and tickets show.
	Label string
}

// BackendLabel returns the source label, or the kind when there is none
func (e Entry) BackendLabel() string {
	if e.Label != "" {
		return e.Label
	}
	return string(e.Backend)
}

// OUMap is the registry for one run. It is never mutated after Load.
type OUMap struct {
	DefaultBackend BackendKind
	entries        []Entry
}

// New builds an OUMap from entries, keeping their order
func New(defaultBackend BackendKind, entries ...Entry) *OUMap {
	if defaultBackend == "" {
		defaultBackend = DefaultBackend
	}
	m := &OUMap{DefaultBackend: defaultBackend}
	for _, e := range entries {
		if e.Backend == "" {
			e.Backend = defaultBackend
		}
		m.entries = append(m.entries, e)
	}
	return m
}

// Empty returns a registry with no OUs
func Empty() *OUMap {
	return New(DefaultBackend)
}

// Entries returns the OUs in file order
func (m *OUMap) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of OUs
func (m *OUMap) Len() int {
	return len(m.entries)
}

// Load reads the registry file. A missing or malformed file yields an empty
// registry with the default backend: the run proceeds with zero OUs.
func Load(path string) *OUMap {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("OU registry unavailable, continuing with no OUs", "path", path, "error", err)
		return Empty()
	}

	m, err := Parse(data)
	if err != nil {
		slog.Warn("OU registry malformed, continuing with no OUs", "path", path, "error", err)
		return Empty()
	}

	slog.Info("OU registry loaded", "path", path, "ous", m.Len(), "defaultBackend", m.DefaultBackend)
	return m
}

// Parse decodes `{"default_backend": "...", "ous": {"name": "kind", ...}}`
// preserving the order of the "ous" object.
func Parse(data []byte) (*OUMap, error) {
	var doc struct {
		DefaultBackend string          `json:"default_backend"`
		OUs            json.RawMessage `json:"ous"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	defaultLabel := strings.TrimSpace(doc.DefaultBackend)
	defaultBackend, ok := ParseBackendKind(defaultLabel)
	if !ok {
		defaultBackend = DefaultBackend
		defaultLabel = ""
	}

	entries, err := decodeOrderedOUs(doc.OUs)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Label == "" {
			entries[i].Label = defaultLabel
		}
	}

	return New(defaultBackend, entries...), nil
}

// decodeOrderedOUs walks the "ous" object token by token; a map would lose file order
func decodeOrderedOUs(raw json.RawMessage) ([]Entry, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode ous: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode ous: expected object")
	}

	var entries []Entry
	seen := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode ous: %w", err)
		}
		name, _ := keyTok.(string)

		var label string
		if err := dec.Decode(&label); err != nil {
			return nil, fmt.Errorf("decode ous[%s]: %w", name, err)
		}
		label = strings.TrimSpace(label)
		kind, _ := ParseBackendKind(label)

		// duplicate keys: last one wins, first position kept
		if i, dup := seen[name]; dup {
			entries[i].Backend = kind
			entries[i].Label = label
			continue
		}
		seen[name] = len(entries)
		entries = append(entries, Entry{Name: name, Backend: kind, Label: label})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode ous: %w", err)
	}
	return entries, nil
}
