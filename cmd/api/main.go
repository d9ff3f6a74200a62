// AngelaMos | 2026
// main.go

package main

import (
	"log/slog"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const configFlag = "config"

const defaultConfigPath = "config.yaml"

// configFlags returns a fresh flag map. A cobraflags.Flag remembers the last
// command it was registered on, so commands never share one.
func configFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		configFlag: &cobraflags.StringFlag{
			Name:  configFlag,
			Value: defaultConfigPath,
			Usage: "Path to the YAML config file; missing files fall back to env vars",
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "membership-api",
		Short:         "Membership API with digital identity cards",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCommand,
	}
	cobraflags.RegisterMap(root, configFlags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  serveCommand,
	}
	cobraflags.RegisterMap(serveCmd, configFlags())

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Create any missing tables and exit",
		RunE:  schemaCommand,
	}
	cobraflags.RegisterMap(schemaCmd, configFlags())

	root.AddCommand(serveCmd, schemaCmd)
	return root
}

// configPath reads --config from the command being executed.
func configPath(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil || path == "" {
		return defaultConfigPath
	}
	return path
}
