package commands

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ntandomods/wabot/pkg/wabot/config"
)

// newHealthCmd creates `wabot health` for Docker HEALTHCHECK and monitoring.
// It probes the running daemon's health endpoint.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the running daemon's health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Port))
			if err != nil {
				return fmt.Errorf("daemon not reachable: %w", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			fmt.Print(string(body))
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
			}
			return nil
		},
	}
}
