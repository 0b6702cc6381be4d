// hmsctl — служебные команды консоли: миграции, пользователи, наблюдение за дашбордом.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xela07ax/hospital-console/internal/infra"
	"go.uber.org/zap"
)

// env — общее состояние команд, заполняется в PersistentPreRunE
type env struct {
	cfg    *infra.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "hmsctl",
		Short:         "Hospital console maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			logger, _, err := infra.NewLogger(cfg.Logger)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	root.AddCommand(newMigrateCmd(e), newCreateAdminCmd(e), newWatchCmd(e))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
