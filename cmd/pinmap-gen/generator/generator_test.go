package generator

import (
	"strings"
	"testing"
)

const sample = `
chip: TEST
package: gpio
ports:
  A: [9, 0, 9]
  B: [1]
functions:
  USART1_TX: {PA9: 1}
  TIM1_CH1N: {PA0: 2, PB1: 3}
analog:
  PA0: 0
`

func TestLoadAndOrder(t *testing.T) {
	tab, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, p := range tab.Pins() {
		names = append(names, p.Name())
	}
	if got := strings.Join(names, ","); got != "PA0,PA9,PB1" {
		t.Errorf("pins = %s", got)
	}
	if got := strings.Join(tab.Roles(), ","); got != "TIM1_CH1N,USART1_TX" {
		t.Errorf("roles = %s", got)
	}
	if got := strings.Join(tab.PinsFor("TIM1_CH1N"), ","); got != "PA0,PB1" {
		t.Errorf("PinsFor = %s", got)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"unknown pin", "package: g\nports: {A: [0]}\nfunctions: {X: {PA5: 1}}\n", "unknown pin PA5"},
		{"af range", "package: g\nports: {A: [0]}\nfunctions: {X: {PA0: 16}}\n", "out of range"},
		{"bad role", "package: g\nports: {A: [0]}\nfunctions: {\"1X\": {PA0: 1}}\n", "valid identifier"},
		{"no package", "ports: {A: [0]}\n", "missing package"},
		{"unknown key", "package: g\nports: {A: [0]}\npins: []\n", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	tab, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	src, err := tab.Generate("sample.yaml")
	if err != nil {
		t.Fatal(err)
	}
	// gofmt aligns the one-line method bodies; compare with spacing collapsed.
	out := squash(string(src))
	for _, want := range []string{
		"// Code generated by pinmap-gen from sample.yaml. DO NOT EDIT.",
		"type PA9 struct{}",
		"func (PA9) USART1TX() AF { return 1 }",
		"func (PB1) TIM1CH1N() AF { return 3 }",
		"func (PA0) ADCChannel() uint8 { return 0 }",
		"type TIM1CH1NPin interface {",
		"type PinsB struct {",
		"var AllPins = [...]Pin{",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated source lacks %q", want)
		}
	}
	if strings.Contains(out, "func (PB1) USART1TX") {
		t.Error("PB1 got a role it does not have")
	}

	test, err := tab.GenerateTest("sample.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(squash(string(test)), `r, ok := p.(USART1TXPin)`) {
		t.Errorf("role check missing:\n%s", test)
	}
}

func squash(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(lines, "\n")
}
