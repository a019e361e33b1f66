package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/tempocut/internal/pipeline"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tempocut <file-or-dir>...",
		Short:        "Speed up audio files without changing pitch and split them into segments",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().Float64("speed", pipeline.DefaultSpeed, "Speed factor")
	root.Flags().Int("length", pipeline.DefaultSegmentMinutes, "Segment length in minutes")
	root.Flags().String("out", ".", "Output base directory (results go to <out>/processed_audio)")
	root.Flags().String("config", "", "YAML config file")
	root.Flags().Bool("manifest", false, "Write processed_audio/manifest.json")
	root.Flags().Bool("tags", true, "Show ID3 tags for each file")
	root.Flags().Duration("segment-timeout", 0, "Kill ffmpeg if one segment takes longer (0 = no limit)")
	root.Flags().String("log-level", "info", "Diagnostic log level (trace, debug, info, warn, error, off)")

	// Hidden tool overrides
	root.Flags().String("ext", pipeline.DefaultExt, "Input file extension")
	root.Flags().String("ffmpeg", "ffmpeg", "ffmpeg binary")
	root.Flags().String("ffprobe", "ffprobe", "ffprobe binary")
	_ = root.Flags().MarkHidden("ext")
	_ = root.Flags().MarkHidden("ffmpeg")
	_ = root.Flags().MarkHidden("ffprobe")

	return root
}
