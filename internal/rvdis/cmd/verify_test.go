package cmd

import (
	"bytes"
	"strings"
	"testing"

	"rvdis/internal/crosscheck"
)

func TestVerifyCommand(t *testing.T) {
	path := writeSample(t)
	var buf bytes.Buffer
	verifyCmd.SetOut(&buf)
	t.Cleanup(func() { verifyCmd.SetOut(nil) })

	if err := verifyCmd.RunE(verifyCmd, []string{path}); err != nil {
		t.Fatalf("verify: %v\n%s", err, buf.String())
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != path+": 5 words" {
		t.Errorf("first line = %q", lines[0])
	}
	if got := strings.Fields(lines[1]); len(got) != 2 || got[0] != "agree" || got[1] != "5" {
		t.Errorf("agree line = %q", lines[1])
	}
}

func TestWriteReport(t *testing.T) {
	r := crosscheck.Report{
		Total:  4,
		Counts: map[crosscheck.Class]int{crosscheck.Agree: 1, crosscheck.OnlyReference: 3},
		Findings: []crosscheck.Finding{
			{Addr: 0x1000, Word: 0x02c58533, Class: crosscheck.OnlyReference, Reference: "mul"},
			{Addr: 0x1004, Word: 0x02c58533, Class: crosscheck.OnlyReference, Reference: "mul"},
			{Addr: 0x1008, Word: 0x02c58533, Class: crosscheck.OnlyReference, Reference: "mul"},
		},
	}
	var buf bytes.Buffer
	writeReport(&buf, "x.elf", r, 2)
	out := buf.String()

	if !strings.HasPrefix(out, "x.elf: 4 words\n") {
		t.Errorf("header:\n%s", out)
	}
	if n := strings.Count(out, "only-reference -"); n != 2 {
		t.Errorf("listed %d findings, want 2:\n%s", n, out)
	}
	if !strings.Contains(out, "    1000: 02c58533  only-reference -          mul\n") {
		t.Errorf("finding line missing:\n%s", out)
	}
	if !strings.Contains(out, "  ... 1 more\n") {
		t.Errorf("truncation note missing:\n%s", out)
	}
}
