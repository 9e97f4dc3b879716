package cli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/guiyumin/vsum/internal/core/version"
	"github.com/guiyumin/vsum/internal/updater"
	"github.com/spf13/cobra"
)

var checkLatest bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vsum v%s %s/%s\n", version.Version, runtime.GOOS, runtime.GOARCH)
		if !checkLatest {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		latest, newer, err := updater.CheckUpdate(ctx)
		switch {
		case err != nil:
			warnf("%v", err)
		case newer:
			fmt.Printf("v%s is available, run 'vsum update'\n", latest.Version())
		default:
			fmt.Println("Up to date")
		}
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update vsum to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		return updater.Update(ctx, cmd.OutOrStdout())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&checkLatest, "check", false, "check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}
