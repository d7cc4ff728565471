package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rvdis/internal/listing"
	"rvdis/internal/ui/colorize"
)

// Config is the resolved configuration of one rvdis invocation.
type Config struct {
	Debug      bool   `json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
	Pseudo     bool   `json:"pseudo" jsonschema:"title=Pseudo-instructions,description=Print pseudo-instructions such as mv and ret,default=true"`
	Demangle   bool   `json:"demangle" jsonschema:"title=Demangle,description=Demangle C++ and Rust symbol names"`
	Color      bool   `json:"color" jsonschema:"title=Color,description=Highlight listing output on a terminal,default=true"`
	Targets    bool   `json:"targets" jsonschema:"title=Targets,description=Annotate jumps and branches with their absolute target,default=true"`
	Output     string `json:"output,omitempty" jsonschema:"title=Output,description=Listing destination: a path or - for stdout or auto for ./<stem>.s"`
	JSON       bool   `json:"json" jsonschema:"title=JSON,description=Write the disassembly as JSON"`
	NoTUI      bool   `json:"noTui" jsonschema:"title=No TUI,description=Print the listing instead of starting the viewer"`
	CPUProfile string `json:"cpuProfile,omitempty" jsonschema:"title=CPU Profile,description=Path for CPU profile output"`
}

// ListingOptions converts the rendering switches.
func (c Config) ListingOptions() listing.Options {
	return listing.Options{
		Pseudo:   c.Pseudo,
		Demangle: c.Demangle,
		Color:    c.Color,
		Targets:  c.Targets,
	}
}

// envBool reads a boolean environment variable, reporting whether it was
// set to a parseable value.
func envBool(name string) (bool, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// loadConfig reads the flags of cmd. RVDIS_PSEUDO supplies --pseudo when
// the flag is not given; RVDIS_NO_COLOR and NO_COLOR turn colour off.
func loadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()
	var cfg Config
	var err error
	get := func(name string, dst *bool) {
		if err == nil {
			*dst, err = flags.GetBool(name)
		}
	}
	get("debug", &cfg.Debug)
	get("pseudo", &cfg.Pseudo)
	get("demangle", &cfg.Demangle)
	get("json", &cfg.JSON)
	get("no-tui", &cfg.NoTUI)
	get("targets", &cfg.Targets)
	var noColor bool
	get("no-color", &noColor)
	if err != nil {
		return cfg, err
	}
	if cfg.Output, err = flags.GetString("output"); err != nil {
		return cfg, err
	}
	if cfg.CPUProfile, err = flags.GetString("cpuprofile"); err != nil {
		return cfg, err
	}

	if !flags.Changed("pseudo") {
		if v, ok := envBool("RVDIS_PSEUDO"); ok {
			cfg.Pseudo = v
		}
	}
	cfg.Color = !noColor && colorize.Enabled()
	return cfg, nil
}

// resolveOutput maps the --output value to a file path. An empty result
// means stdout. "auto" derives ./<stem>.s from the input path.
func resolveOutput(input, output string) (string, error) {
	switch output {
	case "", "-":
		return "", nil
	case "auto":
		base := filepath.Base(input)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if stem == "" || stem == "." || stem == string(filepath.Separator) {
			return "", fmt.Errorf("cannot derive an output name from %q", input)
		}
		return "./" + stem + ".s", nil
	}
	return output, nil
}
