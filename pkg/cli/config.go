package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the convert flag surface. Pointer fields
// distinguish "absent" from zero values.
type fileConfig struct {
	Input             string  `yaml:"input"`
	Output            string  `yaml:"output"`
	Event             string  `yaml:"event"`
	Format            string  `yaml:"format"`
	InputFormat       string  `yaml:"input_format"`
	Decompress        string  `yaml:"decompress"`
	Start             *int64  `yaml:"start"`
	End               *int64  `yaml:"end"`
	IgnoreLineNumbers *bool   `yaml:"ignore_line_numbers"`
	SimpleNames       *bool   `yaml:"simple_names"`
	HideArguments     *bool   `yaml:"hide_arguments"`
	ShowReturnValue   *bool   `yaml:"show_return_value"`
	CPUProfile        *string `yaml:"cpuprofile"`
}

// applyFileConfig fills flags the user did not set from a YAML file.
// Unknown keys are configuration errors.
func applyFileConfig(flags *pflag.FlagSet, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	var cfg fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	values := map[string]string{}
	setString := func(name, v string) {
		if v != "" {
			values[name] = v
		}
	}
	setString("input", cfg.Input)
	setString("output", cfg.Output)
	setString("event", cfg.Event)
	setString("format", cfg.Format)
	setString("input-format", cfg.InputFormat)
	setString("decompress", cfg.Decompress)
	if cfg.CPUProfile != nil {
		values["cpuprofile"] = *cfg.CPUProfile
	}
	if cfg.Start != nil {
		values["start"] = strconv.FormatInt(*cfg.Start, 10)
	}
	if cfg.End != nil {
		values["end"] = strconv.FormatInt(*cfg.End, 10)
	}
	setBool := func(name string, v *bool) {
		if v != nil {
			values[name] = strconv.FormatBool(*v)
		}
	}
	setBool("ignore-line-numbers", cfg.IgnoreLineNumbers)
	setBool("simple-names", cfg.SimpleNames)
	setBool("hide-arguments", cfg.HideArguments)
	setBool("show-return-value", cfg.ShowReturnValue)

	for name, value := range values {
		if flags.Changed(name) {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("config %s: %s: %w", path, name, err)
		}
	}
	return nil
}
