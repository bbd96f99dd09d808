package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/seed"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "插入员工、服务窗口或班次目录",
	}

	cmd.AddCommand(seedStaffCmd())
	cmd.AddCommand(seedCountersCmd())
	cmd.AddCommand(seedShiftsCmd())

	return cmd
}

func seedStaffCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "staff",
		Short: "插入随机生成的员工",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("请输入合法的员工数量")
			}

			repo, err := app.repository()
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			seed.SeedStaff(cmd.Context(), repo, rng, n)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 5, "要插入的员工数量")
	return cmd
}

func seedCountersCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "counters",
		Short: "插入服务窗口",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("请输入合法的服务窗口数量")
			}

			repo, err := app.repository()
			if err != nil {
				return err
			}

			seed.SeedCounters(cmd.Context(), repo, n)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 3, "要插入的服务窗口数量")
	return cmd
}

func seedShiftsCmd() *cobra.Command {
	var from, to, rule string

	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "按 rrule 生成班次目录，每个日期生成上午班、下午班和全天班",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := domain.ParseDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			toDate, err := domain.ParseDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			repo, err := app.repository()
			if err != nil {
				return err
			}

			_, err = seed.SeedWorkShifts(cmd.Context(), repo, app.policy, fromDate, toDate, rule)
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "开始日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "结束日期 (YYYY-MM-DD)，包含在内")
	cmd.Flags().StringVar(&rule, "rrule", seed.DefaultRRule, "生成日期使用的 rrule")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
