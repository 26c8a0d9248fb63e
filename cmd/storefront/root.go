package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MiniShop/internal/config"
	"MiniShop/pkg/kit"
)

const service = "storefront"

// cli carries what PersistentPreRunE prepared for the subcommands.
type cli struct {
	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Mini store demo: product catalog and a persistent cart",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.cfg = config.FromEnv()
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			c.log = kit.NewLogger(service, c.cfg.LogLevel)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.AddCommand(
		newServeCmd(c),
		newProductsCmd(c),
		newCategoriesCmd(c),
		newCartCmd(c),
	)
	return root
}
