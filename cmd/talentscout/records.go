package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tbxark/talentscout/record"
)

func newRecordsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List stored candidate records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			store, err := record.NewFileStore(cfg.RecordsPath)
			if err != nil {
				return err
			}
			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			return record.WriteTable(cmd.OutOrStdout(), records)
		},
	}
}
