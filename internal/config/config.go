package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
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
	JWT struct {
		// 令牌由上游身份网关签发，这里只负责校验和解析
		Secret string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
		CacheExpiration     int    `env:"CACHE_EXPIRATION" envDefault:"300"` // 派生视图缓存的过期时间（秒）
	} `envPrefix:"REDIS_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	// 排序权重是配置项而不是写死的业务规则，默认值来自需求方的建议值
	Ranking struct {
		RoleWeight     float64 `env:"ROLE_WEIGHT" envDefault:"0.4"`
		WorkloadWeight float64 `env:"WORKLOAD_WEIGHT" envDefault:"0.35"`
		SkillWeight    float64 `env:"SKILL_WEIGHT" envDefault:"0.25"`
		// 负载均衡子分数的归一化基准，最近 30 天替班小时数达到该值时子分数为 0
		ReferenceMaxRecentHours int32 `env:"REFERENCE_MAX_RECENT_HOURS" envDefault:"60"`
		// 岗位相容表，形如 前台:客服/咨询台,运维:网管
		CompatibleRoles map[string]string `env:"COMPATIBLE_ROLES" envSeparator:"," envKeyValSeparator:":"`
	} `envPrefix:"RANKING_"`
	Capacity struct {
		// 角色默认的月度替班小时数上限，0 表示不限制
		DefaultMonthlyCapHours int32 `env:"DEFAULT_MONTHLY_CAP_HOURS" envDefault:"0"`
	} `envPrefix:"CAPACITY_"`
	Premium struct {
		EmergencyLeadTimeHours int32 `env:"EMERGENCY_LEAD_TIME_HOURS" envDefault:"48"`
		WeeklyOvertimeHours    int32 `env:"WEEKLY_OVERTIME_HOURS" envDefault:"40"`
		// 节假日列表，形如 2025-01-01,2025-05-01
		Holidays []string `env:"HOLIDAYS" envSeparator:","`
	} `envPrefix:"PREMIUM_"`
	Payroll struct {
		DefaultHourlyRate float64 `env:"DEFAULT_HOURLY_RATE" envDefault:"100"`
		// 各岗位时薪，形如 前台:90,运维:120，缺省岗位使用默认时薪
		HourlyRates         map[string]float64 `env:"HOURLY_RATES" envSeparator:"," envKeyValSeparator:":"`
		OvertimeMultiplier  float64            `env:"OVERTIME_MULTIPLIER" envDefault:"1.5"`
		HolidayMultiplier   float64            `env:"HOLIDAY_MULTIPLIER" envDefault:"2"`
		TrainingMultiplier  float64            `env:"TRAINING_MULTIPLIER" envDefault:"1.2"`
		EmergencyMultiplier float64            `env:"EMERGENCY_MULTIPLIER" envDefault:"1.8"`
	} `envPrefix:"PAYROLL_"`
	Seed struct {
		EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"example.com"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	// .env 不存在时忽略错误，线上环境直接用环境变量
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
	}

	return cfg, nil
}
