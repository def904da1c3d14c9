package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/pingsweep/internal/model"
)

func sampleReport() *model.ScanReport {
	return &model.ScanReport{
		ID:          "0195a3c4-test",
		Subnet:      "192.168.1.0/24",
		Total:       254,
		Unreachable: []string{"192.168.1.5", "192.168.1.77"},
		Elapsed:     2500 * time.Millisecond,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"=== Scan Results ===",
		"Subnet:      192.168.1.0/24",
		"Total hosts: 254",
		"Reachable:   252",
		"Unreachable: 2",
		"Elapsed:     2.50s",
		"Unreachable addresses:",
		"  192.168.1.5",
		"  192.168.1.77",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextAllReachable(t *testing.T) {
	r := sampleReport()
	r.Unreachable = nil

	var buf bytes.Buffer
	WriteText(&buf, r)
	out := buf.String()

	if !strings.Contains(out, "All host addresses in the subnet are reachable.") {
		t.Errorf("missing all-reachable message:\n%s", out)
	}
	if strings.Contains(out, "Unreachable addresses:") {
		t.Errorf("unexpected unreachable listing:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded model.ScanReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Subnet != "192.168.1.0/24" || decoded.Total != 254 {
		t.Errorf("decoded report mismatch: %+v", decoded)
	}
	if len(decoded.Unreachable) != 2 {
		t.Errorf("Unreachable = %v, want 2 entries", decoded.Unreachable)
	}
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	sink.ProbeCompleted("10.0.0.1", true)
	sink.ProbeCompleted("10.0.0.2", false)

	out := buf.String()
	if !strings.Contains(out, "[+] 10.0.0.1 reachable") {
		t.Errorf("missing reachable line:\n%s", out)
	}
	if !strings.Contains(out, "[-] 10.0.0.2 unreachable") {
		t.Errorf("missing unreachable line:\n%s", out)
	}
}
