package cmd

import (
	"github.com/hbomb79/Siphon/internal"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Run the HTTP API until interrupted. Downloads still streaming when Siphon is stopped are torn down.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			siphon, err := internal.New(*config)
			if err != nil {
				return err
			}

			return siphon.Run(cmd.Context())
		},
	}
}
