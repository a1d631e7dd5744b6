package cli

import (
	"fmt"

	"github.com/botbridge/botbridge/internal/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ BotBridge Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 BotBridge Status")
		fmt.Printf("Version: %s\n", version)

		path, err := config.ConfigPath()
		if err == nil {
			fmt.Println("Config:  " + path)
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:  ✗ Load error: %v\n", err)
			return
		}

		if cfg.BotFramework.EmulatorMode() {
			fmt.Println("Credentials: ✗ Not set (emulator mode)")
		} else {
			fmt.Println("Credentials: ✓ Found")
		}
		fmt.Printf("Gateway: http://%s%s\n", cfg.Gateway.ListenAddr(), cfg.Gateway.WebhookPath)
		if cfg.Kafka.Enabled {
			fmt.Printf("Kafka:   ✓ Enabled (%s)\n", cfg.Kafka.Brokers)
		} else {
			fmt.Println("Kafka:   ✗ Disabled (echo responder)")
		}
		if n := len(cfg.BotFramework.Channels); n > 0 {
			fmt.Printf("Seeded channels: %d\n", n)
		}
	},
}
