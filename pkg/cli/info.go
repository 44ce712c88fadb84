package cli

import (
	"github.com/spf13/cobra"

	"github.com/flamefold/flamefold/pkg/output"
	"github.com/flamefold/flamefold/pkg/recording"
)

var (
	infoFormat     string
	infoDecompress string
	infoTimestamps bool
)

var infoCmd = &cobra.Command{
	Use:   "info [recording]",
	Short: "Show what a recording contains",
	Long: `Info reads a JSONL recording and reports per-type event counts and the
time span it covers, without folding anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	compression, err := recording.ParseCompression(infoDecompress)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(infoFormat)
	if err != nil {
		return err
	}

	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	src, err := recording.NewJSONLSource(in, compression)
	if err != nil {
		return err
	}
	defer src.Close()

	details, err := recording.Summarize(src)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, cmd.OutOrStdout()).RenderDetails(details, infoTimestamps)
}

func init() {
	flags := infoCmd.Flags()
	flags.StringVarP(&infoFormat, "format", "f", string(output.FormatTable), "output format (table, json)")
	flags.StringVar(&infoDecompress, "decompress", string(recording.CompressionAuto), "input decompression (auto, gzip, zstd, none)")
	flags.BoolVar(&infoTimestamps, "timestamps", false, "print raw nanosecond timestamps")

	rootCmd.AddCommand(infoCmd)
}
