package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// App 保存各个子命令共用的依赖，数据库在第一次使用时才连接
type App struct {
	cfg    *config.Config
	policy domain.Policy
	logger *slog.Logger

	dbpool *sql.DB
	repo   *repository.Repository
}

var app *App

func main() {
	rootCmd := &cobra.Command{
		Use:           "roster",
		Short:         "服务窗口排班管理工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.dbpool != nil {
				_ = app.dbpool.Close()
			}
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(eventsCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("命令执行失败", "error", err)
		os.Exit(1)
	}
}

func initApp() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 本地开发时从 .env 读取环境变量，文件不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("无法加载配置文件: %w", err)
	}

	policy, err := cfg.LoadPolicy()
	if err != nil {
		return fmt.Errorf("无法加载排班策略: %w", err)
	}

	app = &App{cfg: cfg, policy: policy, logger: logger}
	return nil
}

func (a *App) repository() (*repository.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}

	dbpool, err := sql.Open("pgx", a.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("无法创建数据库连接池: %w", err)
	}

	dbpool.SetMaxOpenConns(a.cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(a.cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(a.cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		_ = dbpool.Close()
		return nil, fmt.Errorf("无法连接到数据库: %w", err)
	}

	a.dbpool = dbpool
	a.repo = repository.NewRepository(a.cfg, dbpool)
	return a.repo, nil
}
