package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flamefold/flamefold/pkg/convert"
	"github.com/flamefold/flamefold/pkg/debug"
	"github.com/flamefold/flamefold/pkg/event"
	"github.com/flamefold/flamefold/pkg/frame"
	"github.com/flamefold/flamefold/pkg/recording"
)

// InputFormat selects how the recording is read.
type InputFormat string

const (
	InputJSONL  InputFormat = "jsonl"
	InputPprof  InputFormat = "pprof"
	InputPerf   InputFormat = "perf"
	InputFolded InputFormat = "folded"
)

// parseInputFormat validates an input format name.
func parseInputFormat(name string) (InputFormat, error) {
	switch f := InputFormat(name); f {
	case InputJSONL, InputPprof, InputPerf, InputFolded:
		return f, nil
	case "":
		return InputJSONL, nil
	}
	return "", fmt.Errorf("unknown input format %q (known: jsonl, pprof, perf, folded)", name)
}

var (
	convertInput       string
	convertOutput      string
	convertCategory    string
	convertFormat      string
	convertInputFormat string
	convertDecompress  string
	convertConfigFile  string
	convertCPUProfile  string
	convertStart       int64
	convertEnd         int64
	convertNamer       frame.Options
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Fold a recording into flame graph output",
	Long: `Convert reads profiling events from a recording, keeps those of one
category, folds their stacks into an aggregation tree, and emits the
result as folded stacks or a hierarchical JSON tree.`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	if convertConfigFile != "" {
		if err := applyFileConfig(cmd.Flags(), convertConfigFile); err != nil {
			return err
		}
	}

	category, err := event.ParseCategory(convertCategory)
	if err != nil {
		return err
	}
	outFormat, err := convert.ParseOutputFormat(convertFormat)
	if err != nil {
		return err
	}
	inFormat, err := parseInputFormat(convertInputFormat)
	if err != nil {
		return err
	}
	compression, err := recording.ParseCompression(convertDecompress)
	if err != nil {
		return err
	}

	var window recording.TimeRange
	if convertStart > 0 {
		window.StartNanos = convertStart * int64(time.Second)
	}
	if convertEnd > 0 {
		window.EndNanos = convertEnd * int64(time.Second)
	}
	if window.StartNanos != 0 && window.EndNanos != 0 && window.EndNanos < window.StartNanos {
		return fmt.Errorf("--end %d precedes --start %d", convertEnd, convertStart)
	}
	if !window.IsZero() && inFormat != InputJSONL {
		return fmt.Errorf("time filtering needs event timestamps; %s input carries none", inFormat)
	}
	if inFormat == InputPerf && category != event.CategoryCPU {
		return fmt.Errorf("perf script input carries only cpu samples, not %s", category)
	}

	if convertCPUProfile != "" {
		stop, err := debug.StartCPUProfile(convertCPUProfile)
		if err != nil {
			return err
		}
		defer stop()
	}

	conv, err := convert.New(convert.Options{
		Category: category,
		Namer:    convertNamer,
		Output:   outFormat,
	}, logger)
	if err != nil {
		return err
	}

	in, err := openInput(convertInput)
	if err != nil {
		return err
	}
	defer in.Close()

	out, closeOut, err := openOutput(convertOutput)
	if err != nil {
		return err
	}

	switch inFormat {
	case InputFolded:
		err = conv.Refold(in, out)
	case InputPprof:
		var src *recording.PprofSource
		if src, err = recording.NewPprofSource(in, category); err == nil {
			err = conv.Run(src, out)
		}
	case InputPerf:
		err = conv.Run(recording.NewPerfScriptSource(in), out)
	default:
		var src *recording.JSONLSource
		if src, err = recording.NewJSONLSource(in, compression); err == nil {
			filter := recording.NewFilter(src, category, window)
			err = conv.Run(filter, out)
			logger.WithFields(logrus.Fields{
				"seen": filter.Seen(),
				"kept": filter.Kept(),
			}).Debug("Source filtering")
		}
	}
	if err != nil {
		closeOut()
		// Never leave a partial aggregate behind.
		if convertOutput != "" && convertOutput != "-" {
			os.Remove(convertOutput)
		}
		return err
	}
	return closeOut()
}

func init() {
	flags := convertCmd.Flags()
	flags.StringVarP(&convertInput, "input", "i", "", "recording to read (default stdin)")
	flags.StringVarP(&convertOutput, "output", "o", "", "file to write (default stdout)")
	flags.StringVarP(&convertCategory, "event", "e", string(event.CategoryCPU), "event category to fold; 'flamefold categories' lists them")
	flags.StringVarP(&convertFormat, "format", "f", string(convert.OutputFolded), "output format (folded, json)")
	flags.StringVar(&convertInputFormat, "input-format", string(InputJSONL), "input format (jsonl, pprof, perf, folded)")
	flags.StringVar(&convertDecompress, "decompress", string(recording.CompressionAuto), "input decompression (auto, gzip, zstd, none)")
	flags.StringVar(&convertConfigFile, "config", "", "YAML config file; flags set on the command line win")
	flags.StringVar(&convertCPUProfile, "cpuprofile", "", "write a CPU profile of the conversion itself")
	flags.Int64Var(&convertStart, "start", 0, "keep events at or after this time (epoch seconds)")
	flags.Int64Var(&convertEnd, "end", 0, "keep events at or before this time (epoch seconds)")
	flags.BoolVar(&convertNamer.IgnoreLineNumbers, "ignore-line-numbers", false, "merge frames that differ only by line number")
	flags.BoolVar(&convertNamer.SimpleNames, "simple-names", false, "drop module qualifiers from frame names")
	flags.BoolVar(&convertNamer.HideArguments, "hide-arguments", false, "drop argument signatures from frame names")
	flags.BoolVar(&convertNamer.ShowReturnValue, "show-return-value", false, "prefix frame names with the return type")

	rootCmd.AddCommand(convertCmd)
}
