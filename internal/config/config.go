package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port               string   `env:"PORT" envDefault:"3000"`
		ReadTimeout        int      `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout       int      `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout        int      `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout    int      `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Policy struct {
		MaxShiftsPerWeek  int    `env:"MAX_SHIFTS_PER_WEEK" envDefault:"6"`
		MaxShiftsPerMonth int    `env:"MAX_SHIFTS_PER_MONTH" envDefault:"26"`
		File              string `env:"FILE"` // 可选的 YAML 文件，会覆盖上面两个值
	} `envPrefix:"POLICY_"`
	Lock struct {
		Enabled bool   `env:"ENABLED" envDefault:"true"`
		TTL     int    `env:"TTL" envDefault:"10"`
		Prefix  string `env:"PREFIX" envDefault:"roster:lock:"`
	} `envPrefix:"LOCK_"`
	Metrics struct {
		Enabled   bool   `env:"ENABLED" envDefault:"true"`
		Namespace string `env:"NAMESPACE" envDefault:"roster"`
		Path      string `env:"PATH" envDefault:"/metrics"`
	} `envPrefix:"METRICS_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"` // 为空时不发送排班事件
		Queue          string `env:"QUEUE" envDefault:"assignment_events"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
	} `envPrefix:"REDIS_"`
}

func LoadConfig() (*Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
