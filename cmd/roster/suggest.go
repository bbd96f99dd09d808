package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/coordinator"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

func suggestCmd() *cobra.Command {
	var (
		date     string
		mode     string
		staffIDs []string
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "按统计周期内的班次数量从少到多列出员工",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseDate(date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			m, err := calendar.ParseMode(mode)
			if err != nil {
				return err
			}

			repo, err := app.repository()
			if err != nil {
				return err
			}

			// 未指定员工时对所有在职员工排序
			if len(staffIDs) == 0 {
				staff, err := repo.ListStaff(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range staff {
					staffIDs = append(staffIDs, s.ID)
				}
			}

			coord := coordinator.New(repo, app.policy, coordinator.WithLogger(app.logger))
			rankings, err := coord.Suggest(cmd.Context(), staffIDs, d, m)
			if err != nil {
				return err
			}

			period := calendar.Resolve(m, d)
			fmt.Printf("\n统计周期 %s，共 %d 名员工:\n\n", period, len(rankings))
			for i, r := range rankings {
				capacity := ""
				if r.AtCapacity {
					capacity = " [已满]"
				}
				fmt.Printf("%2d. %s  班次 %d  剩余 %d%s\n", i+1, r.StaffID, r.ShiftCount, r.Remaining, capacity)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "参考日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&mode, "mode", string(calendar.ModeWeek), "统计周期 (week 或 month)")
	cmd.Flags().StringSliceVar(&staffIDs, "staff", nil, "候选员工 ID，可以重复指定")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
