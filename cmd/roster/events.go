package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/events"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "排班事件相关的命令",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tail",
		Short: "持续打印排班事件队列中的事件，按 CTRL+C 退出",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.RabbitMQ.DSN == "" {
				return fmt.Errorf("未配置 RABBITMQ_DSN")
			}

			conn, err := amqp.Dial(app.cfg.RabbitMQ.DSN)
			if err != nil {
				return fmt.Errorf("无法连接到 rabbitmq: %w", err)
			}
			defer conn.Close()

			ch, err := conn.Channel()
			if err != nil {
				return fmt.Errorf("无法建立通道: %w", err)
			}
			defer ch.Close()

			if err := events.DeclareQueue(ch, app.cfg.RabbitMQ.Queue); err != nil {
				return fmt.Errorf("无法声明队列: %w", err)
			}

			// 监听 CTRL+C
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return events.Consume(ctx, ch, app.cfg.RabbitMQ.Queue, func(e events.Event) error {
				a := e.Assignment
				fmt.Printf("%s  %-20s  %s  %s  %s  %s\n",
					e.OccurredAt.Format("2006-01-02 15:04:05"), e.Type, a.ID, a.StaffID, a.WorkDate, a.ShiftType)
				return nil
			})
		},
	})

	return cmd
}
