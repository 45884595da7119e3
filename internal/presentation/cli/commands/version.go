package commands

import (
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// versionTitle heads the text output of the version command.
const versionTitle = "tokenlens"

// VersionInfo holds version information for JSON output.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the version, build information, and platform details for tokenlens.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout(), short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}

func runVersion(w io.Writer, short bool) error {
	// version skips app initialization, so it builds its own formatter
	format := output.FormatText
	if globalFlags.Output == "json" {
		format = output.FormatJSON
	}

	formatter := output.NewFormatter(
		output.WithWriter(w),
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	if short {
		if format == output.FormatJSON {
			return formatter.JSON(map[string]string{"version": Version})
		}
		formatter.Println("%s", Version)
		return nil
	}

	info := VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if format == output.FormatJSON {
		return formatter.JSON(info)
	}

	if err := formatter.Header(versionTitle); err != nil {
		return err
	}
	for _, row := range info.rows() {
		if err := formatter.Item(row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}

// rows lists the text form of info in display order.
func (v VersionInfo) rows() [][2]string {
	return [][2]string{
		{"Version", v.Version},
		{"Git Commit", v.GitCommit},
		{"Build Date", v.BuildDate},
		{"Go Version", v.GoVersion},
		{"Platform", v.Platform},
	}
}
