package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/botbridge/botbridge/internal/cli.version=1.2.3"
	version = "0.4.1"
	logo    = "\n" +
		"  ____        _   ____       _     _\n" +
		" | __ )  ___ | |_| __ ) _ __(_) __| | __ _  ___\n" +
		" |  _ \\ / _ \\| __|  _ \\| '__| |/ _` |/ _` |/ _ \\\n" +
		" | |_) | (_) | |_| |_) | |  | | (_| | (_| |  __/\n" +
		" |____/ \\___/ \\__|____/|_|  |_|\\__,_|\\__, |\\___|\n" +
		"                                     |___/\n"
)

var rootCmd = &cobra.Command{
	Use:   "botbridge",
	Short: "BotBridge - Bot Framework gateway",
	Long:  color.CyanString(logo) + "\nA webhook gateway bridging the Microsoft Bot Framework Connector to a message bus.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}
