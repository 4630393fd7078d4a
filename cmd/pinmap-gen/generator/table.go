// Package generator turns a YAML pin table into Go pin types.
package generator

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Table is the decoded pinmap.yaml.
type Table struct {
	Chip      string                      `yaml:"chip"`
	Package   string                      `yaml:"package"`
	Ports     map[string][]uint8          `yaml:"ports"`
	Functions map[string]map[string]uint8 `yaml:"functions"`
	Analog    map[string]uint8            `yaml:"analog"`
}

// Pin is one physical pin, e.g. PA9.
type Pin struct {
	Port  string
	Index uint8
}

func (p Pin) Name() string {
	return "P" + p.Port + strconv.Itoa(int(p.Index))
}

// Load decodes and validates a table.
func Load(r io.Reader) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode pin table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) validate() error {
	if t.Package == "" {
		return fmt.Errorf("pin table: missing package")
	}
	if len(t.Ports) == 0 {
		return fmt.Errorf("pin table: no ports")
	}
	known := map[string]bool{}
	for _, p := range t.Pins() {
		if p.Index > 15 {
			return fmt.Errorf("pin table: %s: index out of range", p.Name())
		}
		known[p.Name()] = true
	}
	for _, role := range t.Roles() {
		if ident(role) == "" {
			return fmt.Errorf("pin table: role %q is not a valid identifier", role)
		}
		for pin, af := range t.Functions[role] {
			if !known[pin] {
				return fmt.Errorf("pin table: %s: unknown pin %s", role, pin)
			}
			if af > 15 {
				return fmt.Errorf("pin table: %s on %s: AF%d out of range", role, pin, af)
			}
		}
	}
	for pin, ch := range t.Analog {
		if !known[pin] {
			return fmt.Errorf("pin table: analog: unknown pin %s", pin)
		}
		if ch > 15 {
			return fmt.Errorf("pin table: analog %s: channel %d out of range", pin, ch)
		}
	}
	return nil
}

// Pins lists every pin, ports in name order and indexes ascending.
func (t *Table) Pins() []Pin {
	ports := sortedKeys(t.Ports)
	var pins []Pin
	for _, port := range ports {
		idx := slices.Clone(t.Ports[port])
		slices.Sort(idx)
		for _, i := range slices.Compact(idx) {
			pins = append(pins, Pin{Port: port, Index: i})
		}
	}
	return pins
}

// Roles lists the function names in sorted order.
func (t *Table) Roles() []string {
	return sortedKeys(t.Functions)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RolesOf lists the roles a pin can take, sorted.
func (t *Table) RolesOf(pin string) []string {
	var roles []string
	for _, role := range t.Roles() {
		if _, ok := t.Functions[role][pin]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// PinsFor lists the pins that can take role, in pin order.
func (t *Table) PinsFor(role string) []string {
	var out []string
	for _, p := range t.Pins() {
		if _, ok := t.Functions[role][p.Name()]; ok {
			out = append(out, p.Name())
		}
	}
	return out
}

// ident turns a role like "TIM1_CH1N" into the method name "TIM1CH1N".
func ident(role string) string {
	s := strings.ReplaceAll(role, "_", "")
	if s == "" {
		return ""
	}
	for i, r := range s {
		ok := r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || i > 0 && r >= '0' && r <= '9'
		if !ok {
			return ""
		}
	}
	return s
}

// Method returns the Go method name for role.
func Method(role string) string {
	return ident(role)
}

// Interface returns the Go interface name for role.
func Interface(role string) string {
	return ident(role) + "Pin"
}
