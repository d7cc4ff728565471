package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

func parsed(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "rvdis"}
	setRootFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RVDIS_NO_COLOR", "")
	t.Setenv("NO_COLOR", "")
	t.Setenv("RVDIS_PSEUDO", "")

	tests := []struct {
		name string
		args []string
		env  map[string]string
		want Config
	}{
		{
			name: "defaults",
			want: Config{Pseudo: true, Color: true, Targets: true},
		},
		{
			name: "flags",
			args: []string{"-d", "-n", "--json", "-o", "auto", "--pseudo=false", "--demangle", "--targets=false", "--cpuprofile", "cpu.out"},
			want: Config{Debug: true, NoTUI: true, JSON: true, Output: "auto", Demangle: true, Color: true, CPUProfile: "cpu.out"},
		},
		{
			name: "pseudo from env",
			env:  map[string]string{"RVDIS_PSEUDO": "0"},
			want: Config{Color: true, Targets: true},
		},
		{
			name: "flag beats env",
			args: []string{"--pseudo=true"},
			env:  map[string]string{"RVDIS_PSEUDO": "false"},
			want: Config{Pseudo: true, Color: true, Targets: true},
		},
		{
			name: "unparseable env is ignored",
			env:  map[string]string{"RVDIS_PSEUDO": "maybe"},
			want: Config{Pseudo: true, Color: true, Targets: true},
		},
		{
			name: "no-color flag",
			args: []string{"--no-color"},
			want: Config{Pseudo: true, Targets: true},
		},
		{
			name: "no-color env",
			env:  map[string]string{"RVDIS_NO_COLOR": "1"},
			want: Config{Pseudo: true, Targets: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := loadConfig(parsed(t, tt.args...))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("loadConfig = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestListingOptions(t *testing.T) {
	opts := Config{Pseudo: true, Demangle: true, Targets: true}.ListingOptions()
	if !opts.Pseudo || !opts.Demangle || opts.Color || !opts.Targets {
		t.Errorf("ListingOptions = %+v", opts)
	}
}

func TestResolveOutput(t *testing.T) {
	tests := []struct {
		input, output string
		want          string
		wantErr       bool
	}{
		{"prog.elf", "", "", false},
		{"prog.elf", "-", "", false},
		{"build/prog.elf", "auto", "./prog.s", false},
		{"/abs/firmware", "auto", "./firmware.s", false},
		{"a.b.c", "auto", "./a.b.s", false},
		{"prog.elf", "out/listing.s", "out/listing.s", false},
		{"/", "auto", "", true},
	}
	for _, tt := range tests {
		got, err := resolveOutput(tt.input, tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveOutput(%q, %q) error = %v, wantErr %v", tt.input, tt.output, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveOutput(%q, %q) = %q, want %q", tt.input, tt.output, got, tt.want)
		}
	}
}
