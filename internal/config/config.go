package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	Mode         string        `mapstructure:"mode"` // gin 模式：debug/release/test
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// RedisConfig Redis 连接配置（已签发载荷存储）
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"poolSize"`
	MinIdleConns int           `mapstructure:"minIdleConns"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	KeyPrefix    string        `mapstructure:"keyPrefix"`
}

// QRISConfig 商户模板与金额规则
type QRISConfig struct {
	Template      string        `mapstructure:"template"`      // 默认商户的静态模板
	MerchantName  string        `mapstructure:"merchantName"`  // 默认商户在目录中的名称
	TemplatesFile string        `mapstructure:"templatesFile"` // 额外商户模板 YAML，可为空
	MinAmount     int64         `mapstructure:"minAmount"`
	MaxAmount     int64         `mapstructure:"maxAmount"`
	DefaultAmount int64         `mapstructure:"defaultAmount"` // 请求未给出金额时使用
	Expiry        time.Duration `mapstructure:"expiry"`        // 已签发载荷的有效期
	CompositeTags []string      `mapstructure:"compositeTags"` // 为空时使用 EMVCo 默认集合
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis"`
	QRIS    QRISConfig    `mapstructure:"qris"`
}

// DefaultTemplate 默认静态商户模板
const DefaultTemplate = "00020101021126670016COM.NOBUBANK.WWW01189360050300000879140214210379661725380303UMI" +
	"51440014ID.CO.QRIS.WWW0215ID20253865385780303UMI5204541153033605802ID" +
	"5922LUTIFY STORE OK23176316006BEKASI61051711162070703A0163041FF9"

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 QRIS_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("QRIS_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	// 环境变量覆盖：前缀 QRIS_，并将点号替换为下划线
	v.SetEnvPrefix("QRIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 未指定路径时允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置的业务约束
func (c *Config) Validate() error {
	q := c.QRIS
	if strings.TrimSpace(q.Template) == "" {
		return errors.New("config: qris.template is empty")
	}
	if q.MinAmount < 1 {
		return fmt.Errorf("config: qris.minAmount must be >= 1, got %d", q.MinAmount)
	}
	if q.MaxAmount < q.MinAmount {
		return fmt.Errorf("config: qris.maxAmount %d < minAmount %d", q.MaxAmount, q.MinAmount)
	}
	if q.DefaultAmount < q.MinAmount || q.DefaultAmount > q.MaxAmount {
		return fmt.Errorf("config: qris.defaultAmount %d outside [%d, %d]", q.DefaultAmount, q.MinAmount, q.MaxAmount)
	}
	if q.Expiry <= 0 {
		return fmt.Errorf("config: qris.expiry must be positive, got %s", q.Expiry)
	}
	if q.MerchantName == "" {
		return errors.New("config: qris.merchantName is empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "qris-server")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.mode", "release")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/qris-server.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 20)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.dialTimeout", "5s")
	v.SetDefault("redis.readTimeout", "3s")
	v.SetDefault("redis.writeTimeout", "3s")
	v.SetDefault("redis.keyPrefix", "qris:issued")

	v.SetDefault("qris.template", DefaultTemplate)
	v.SetDefault("qris.merchantName", "default")
	v.SetDefault("qris.templatesFile", "")
	v.SetDefault("qris.minAmount", 100)
	v.SetDefault("qris.maxAmount", 500000)
	v.SetDefault("qris.defaultAmount", 10000)
	v.SetDefault("qris.expiry", "1h")
	v.SetDefault("qris.compositeTags", []string{})
}
