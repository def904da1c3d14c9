package scan

import (
	"bytes"
	"strings"
	"testing"

	"github.com/martinsuchenak/pingsweep/internal/subnet"
)

func TestPromptSubnet(t *testing.T) {
	in := strings.NewReader("192.168.1.0/24\n")
	var out bytes.Buffer

	got, err := promptSubnet(in, &out, true)
	if err != nil {
		t.Fatalf("promptSubnet failed: %v", err)
	}
	if got != "192.168.1.0/24" {
		t.Errorf("subnet = %q, want 192.168.1.0/24", got)
	}
	if !strings.Contains(out.String(), "Enter subnet (CIDR notation):") {
		t.Errorf("missing prompt text:\n%s", out.String())
	}
}

func TestPromptSubnetReprompts(t *testing.T) {
	// Empty line, then garbage, then a valid block.
	in := strings.NewReader("\nnot-a-subnet\n10.0.0.0/28\n")
	var out bytes.Buffer

	got, err := promptSubnet(in, &out, true)
	if err != nil {
		t.Fatalf("promptSubnet failed: %v", err)
	}
	if got != "10.0.0.0/28" {
		t.Errorf("subnet = %q, want 10.0.0.0/28", got)
	}

	text := out.String()
	if !strings.Contains(text, "Error: please enter a subnet") {
		t.Errorf("missing empty-input error:\n%s", text)
	}
	if !strings.Contains(text, "Error: invalid subnet format") {
		t.Errorf("missing invalid-input error:\n%s", text)
	}
	if n := strings.Count(text, "Enter subnet (CIDR notation):"); n != 3 {
		t.Errorf("prompted %d times, want 3", n)
	}
}

func TestPromptSubnetNormalizesHostBits(t *testing.T) {
	in := strings.NewReader("192.168.1.55/24\n")
	var out bytes.Buffer

	got, err := promptSubnet(in, &out, true)
	if err != nil {
		t.Fatalf("promptSubnet failed: %v", err)
	}
	if got != "192.168.1.0/24" {
		t.Errorf("subnet = %q, want normalized 192.168.1.0/24", got)
	}
}

func TestPromptSubnetLargeBlockConfirm(t *testing.T) {
	// /21 holds 2048 addresses, above the confirmation threshold. Declining
	// re-prompts, a second attempt accepted with "y" goes through.
	in := strings.NewReader("10.0.0.0/21\nn\n10.0.0.0/21\ny\n")
	var out bytes.Buffer

	got, err := promptSubnet(in, &out, false)
	if err != nil {
		t.Fatalf("promptSubnet failed: %v", err)
	}
	if got != "10.0.0.0/21" {
		t.Errorf("subnet = %q, want 10.0.0.0/21", got)
	}
	if n := strings.Count(out.String(), "Continue? (y/n):"); n != 2 {
		t.Errorf("asked for confirmation %d times, want 2:\n%s", n, out.String())
	}
}

func TestPromptSubnetSmallBlockSkipsConfirm(t *testing.T) {
	in := strings.NewReader("192.168.1.0/24\n")
	var out bytes.Buffer

	got, err := promptSubnet(in, &out, false)
	if err != nil {
		t.Fatalf("promptSubnet failed: %v", err)
	}
	if got != "192.168.1.0/24" {
		t.Errorf("subnet = %q, want 192.168.1.0/24", got)
	}
	if strings.Contains(out.String(), "Continue? (y/n):") {
		t.Errorf("unexpected confirmation for a /24:\n%s", out.String())
	}
}

func TestConfirmLargeScan(t *testing.T) {
	sub, err := subnet.Parse("172.16.0.0/16")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "YES\n", true},
		{"no", "n\n", false},
		{"anything else", "maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ok, err := confirmLargeScan(strings.NewReader(tt.input), &out, sub)
			if err != nil {
				t.Fatalf("confirmLargeScan failed: %v", err)
			}
			if ok != tt.want {
				t.Errorf("confirm = %v, want %v", ok, tt.want)
			}
		})
	}
}
