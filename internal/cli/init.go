package cli

import (
	"fmt"

	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create vsum config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Existing values seed the wizard.
		cfg, err := config.RunInitWizard()
		if err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Printf("\nSaved %s\n", config.SavePath())
		if cfg.LLM.APIKey == "" && cfg.LLM.APIKeyEncrypted == "" {
			fmt.Printf("Next: set %s or run 'vsum config set-key'\n", config.APIKeyEnv(cfg.LLM.Provider))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
