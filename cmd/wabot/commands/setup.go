package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ntandomods/wabot/pkg/wabot/config"
)

// newSetupCmd creates `wabot setup`, an interactive first-run configurator
// that writes config.yaml and optionally stores the AI key in the OS keyring.
func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive configuration",
		RunE:  runSetup,
	}
}

func runSetup(cmd *cobra.Command, _ []string) error {
	owner := ""
	port := "3000"
	geminiKey := ""
	unsplashKey := ""
	useKeyring := config.KeyringAvailable()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Owner WhatsApp JID").
				Description("Your own number, e.g. 263718456744@s.whatsapp.net").
				Value(&owner),
			huh.NewInput().
				Title("Health check port").
				Value(&port).
				Validate(func(s string) error {
					_, err := strconv.Atoi(s)
					return err
				}),
			huh.NewInput().
				Title("Google AI key (optional, enables !ai)").
				EchoMode(huh.EchoModePassword).
				Value(&geminiKey),
			huh.NewInput().
				Title("Unsplash access key (optional, enables !img)").
				EchoMode(huh.EchoModePassword).
				Value(&unsplashKey),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if geminiKey != "" && useKeyring {
		confirm := huh.NewConfirm().
			Title("Store the AI key in the OS keyring instead of config.yaml?").
			Value(&useKeyring)
		if err := confirm.Run(); err != nil {
			return err
		}
	}

	cfg := config.DefaultConfig()
	cfg.OwnerJID = owner
	cfg.UnsplashKey = unsplashKey
	cfg.Port, _ = strconv.Atoi(port)

	if geminiKey != "" {
		if useKeyring {
			if err := config.StoreGeminiKey(geminiKey); err != nil {
				return fmt.Errorf("storing AI key in keyring: %w", err)
			}
			fmt.Println("AI key stored in OS keyring.")
		} else {
			cfg.GeminiKey = geminiKey
		}
	}

	path := "config.yaml"
	if err := config.SaveToFile(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s. Run `wabot serve` to start.\n", path)
	return nil
}
