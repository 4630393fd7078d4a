package generator

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"
)

const header = "// Code generated by pinmap-gen from %s. DO NOT EDIT.\n\n"

// Generate emits the pin types, role methods and role interfaces.
func (t *Table) Generate(source string) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, header, source)
	fmt.Fprintf(&b, "package %s\n\n", t.Package)

	pins := t.Pins()
	for _, p := range pins {
		name := p.Name()
		fmt.Fprintf(&b, "// %s is pin %d of port %s.\n", name, p.Index, p.Port)
		fmt.Fprintf(&b, "type %s struct{}\n\n", name)
		fmt.Fprintf(&b, "func (%s) Port() Port { return Port%s }\n", name, p.Port)
		fmt.Fprintf(&b, "func (%s) Index() uint8 { return %d }\n", name, p.Index)
		fmt.Fprintf(&b, "func (%s) String() string { return %q }\n", name, name)
		if ch, ok := t.Analog[name]; ok {
			fmt.Fprintf(&b, "func (%s) ADCChannel() uint8 { return %d }\n", name, ch)
		}
		for _, role := range t.RolesOf(name) {
			fmt.Fprintf(&b, "func (%s) %s() AF { return %d }\n", name, Method(role), t.Functions[role][name])
		}
		b.WriteString("\n")
	}

	for _, role := range t.Roles() {
		fmt.Fprintf(&b, "// %s is satisfied by pins that can carry %s: %s.\n",
			Interface(role), role, strings.Join(t.PinsFor(role), ", "))
		fmt.Fprintf(&b, "type %s interface {\n\tPin\n\t%s() AF\n}\n\n", Interface(role), Method(role))
	}
	if len(t.Analog) > 0 {
		b.WriteString("// ADCPin is satisfied by pins wired to an ADC input.\n")
		b.WriteString("type ADCPin interface {\n\tPin\n\tADCChannel() uint8\n}\n\n")
	}

	for _, port := range portNames(pins) {
		fmt.Fprintf(&b, "// Pins%s holds every pin of port %s.\n", port, port)
		fmt.Fprintf(&b, "type Pins%s struct {\n", port)
		for _, p := range pins {
			if p.Port == port {
				fmt.Fprintf(&b, "\t%s %s\n", p.Name(), p.Name())
			}
		}
		b.WriteString("}\n\n")
	}

	b.WriteString("// AllPins lists every pin of the package.\n")
	b.WriteString("var AllPins = [...]Pin{\n")
	for _, p := range pins {
		fmt.Fprintf(&b, "\t%s{},\n", p.Name())
	}
	b.WriteString("}\n")

	return format.Source([]byte(b.String()))
}

// GenerateTest emits role predicates for the pin-table test. Each predicate
// is a type assertion, so it reports what the compiler accepts.
func (t *Table) GenerateTest(source string) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, header, source)
	fmt.Fprintf(&b, "package %s\n\n", t.Package)
	b.WriteString("var roleChecks = map[string]func(Pin) (AF, bool){\n")
	for _, role := range t.Roles() {
		fmt.Fprintf(&b, "\t%s: func(p Pin) (AF, bool) {\n", strconv.Quote(role))
		fmt.Fprintf(&b, "\t\tr, ok := p.(%s)\n", Interface(role))
		b.WriteString("\t\tif !ok {\n\t\t\treturn 0, false\n\t\t}\n")
		fmt.Fprintf(&b, "\t\treturn r.%s(), true\n\t},\n", Method(role))
	}
	b.WriteString("}\n")
	return format.Source([]byte(b.String()))
}

func portNames(pins []Pin) []string {
	var out []string
	for _, p := range pins {
		if len(out) == 0 || out[len(out)-1] != p.Port {
			out = append(out, p.Port)
		}
	}
	return out
}
