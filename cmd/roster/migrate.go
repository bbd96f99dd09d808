package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行尚未执行的数据库迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.repository()
			if err != nil {
				return err
			}

			applied, err := repo.RunMigrations(cmd.Context())
			if err != nil {
				return err
			}

			if len(applied) == 0 {
				fmt.Println("数据库已是最新版本")
				return nil
			}
			for _, filename := range applied {
				fmt.Printf("- %s\n", filename)
			}
			return nil
		},
	}
}
