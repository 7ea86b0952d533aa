package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// LinkConfig 单条串行链路配置
// Path 为设备路径（/dev/ttyUSB0、COM3、serial:///dev/ttyS1）或 tcp://host:port
type LinkConfig struct {
	Path        string        `mapstructure:"path"`
	BaudRate    int           `mapstructure:"baudRate"`
	ReadTimeout time.Duration `mapstructure:"readTimeout"`
}

// LinksConfig 代理两端链路
type LinksConfig struct {
	ALLS LinkConfig `mapstructure:"alls"`
	LED  LinkConfig `mapstructure:"led"`
}

// ProxyConfig 拦截策略开关
type ProxyConfig struct {
	FixColorSwap bool `mapstructure:"fixColorSwap"`
	LogTraffic   bool `mapstructure:"logTraffic"`
}

// PWMConfig FET 输出映射，通道格式为 "<pwmchip>-<pwm>"，同一通道可出现在多个分区
type PWMConfig struct {
	Enable    bool     `mapstructure:"enable"`
	SysfsRoot string   `mapstructure:"sysfsRoot"`
	Period    uint32   `mapstructure:"period"` // 纳秒
	Chassis   []string `mapstructure:"chassis"`
	Ring      []string `mapstructure:"ring"`
	Side      []string `mapstructure:"side"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Enable       bool          `mapstructure:"enable"`
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// LumberjackConfig 日志滚动（lumberjack）配置，Filename 为空时只输出到控制台
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
	Output string           `mapstructure:"output"` // stdout 或 stderr
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Link    LinksConfig   `mapstructure:"link"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	PWM     PWMConfig     `mapstructure:"pwm"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 LEDPROXY_CONFIG 读取；否则回退到 configs/ledproxy.yaml。
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith 使用调用方提供的 viper 实例加载（命令行 flag 已绑定到 v）
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	// 环境变量覆盖：前缀 LEDPROXY_，并将点号替换为下划线
	v.SetEnvPrefix("LEDPROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("CONFIG")
	}

	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("ledproxy")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 未指定文件时允许缺失，依赖默认值、flag 与环境变量
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ledproxy")
	v.SetDefault("app.env", "dev")

	v.SetDefault("link.alls.path", "")
	v.SetDefault("link.alls.baudRate", 115200)
	v.SetDefault("link.alls.readTimeout", "100ms")
	v.SetDefault("link.led.path", "")
	v.SetDefault("link.led.baudRate", 115200)
	v.SetDefault("link.led.readTimeout", "100ms")

	v.SetDefault("proxy.fixColorSwap", false)
	v.SetDefault("proxy.logTraffic", false)

	v.SetDefault("pwm.enable", false)
	v.SetDefault("pwm.sysfsRoot", "/sys/class/pwm")
	v.SetDefault("pwm.period", 50000)
	v.SetDefault("pwm.chassis", []string{})
	v.SetDefault("pwm.ring", []string{})
	v.SetDefault("pwm.side", []string{})

	v.SetDefault("http.enable", false)
	v.SetDefault("http.addr", ":9108")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}
