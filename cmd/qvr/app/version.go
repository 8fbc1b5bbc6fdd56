package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quiver-mcp/quiver/pkg/versions"
)

var versionFormat string

// newVersionCommand creates the 'version' subcommand
func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version of quiver",
		RunE: func(_ *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()

			if versionFormat == "json" {
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("Quiver %s\n", info.Version)
			fmt.Printf("Commit: %s\n", info.Commit)
			fmt.Printf("Built: %s\n", info.BuildDate)
			fmt.Printf("Go version: %s\n", info.GoVersion)
			fmt.Printf("Platform: %s\n", info.Platform)
			return nil
		},
	}

	cmd.Flags().StringVar(&versionFormat, "format", "text", "Output format (text or json)")

	return cmd
}
