// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Arxiv    ArxivConfig    `mapstructure:"arxiv"`
	Serp     SerpConfig     `mapstructure:"serp"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ArxivConfig 存储 arXiv 论文检索 API 的配置。
type ArxivConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	MaxResultsCap  int    `mapstructure:"max_results_cap"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SerpConfig 存储 SerpAPI 网页搜索的配置。
// APIKey 为空时表示未配置凭证，网页搜索降级为空结果。
type SerpConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// ChatConfig 存储量子问答流水线的行为参数。
type ChatConfig struct {
	DefaultMaxPapers     int    `mapstructure:"default_max_papers"`
	DefaultMaxWebResults int    `mapstructure:"default_max_web_results"`
	MaxPapersCap         int    `mapstructure:"max_papers_cap"`
	MaxWebResultsCap     int    `mapstructure:"max_web_results_cap"`
	DisplayCap           int    `mapstructure:"display_cap"`
	AbstractSnippetLen   int    `mapstructure:"abstract_snippet_len"`
	CategoryFilter       string `mapstructure:"category_filter"`
	MaxSessionTurns      int    `mapstructure:"max_session_turns"`
}

// KafkaConfig 存储分析事件流的 Kafka 配置。Brokers 为空时禁用事件上报。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}

	applyDefaults(&Conf)
}

// applyDefaults 为未配置的流水线参数填充默认值。
func applyDefaults(c *Config) {
	if c.Arxiv.BaseURL == "" {
		c.Arxiv.BaseURL = "https://export.arxiv.org/api/query"
	}
	if c.Arxiv.MaxResultsCap <= 0 {
		c.Arxiv.MaxResultsCap = 50
	}
	if c.Arxiv.TimeoutSeconds <= 0 {
		c.Arxiv.TimeoutSeconds = 15
	}
	if c.Serp.BaseURL == "" {
		c.Serp.BaseURL = "https://serpapi.com/search"
	}
	if c.Serp.TimeoutSeconds <= 0 {
		c.Serp.TimeoutSeconds = 10
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 30
	}
	if c.Chat.DefaultMaxPapers <= 0 {
		c.Chat.DefaultMaxPapers = 10
	}
	if c.Chat.DefaultMaxWebResults <= 0 {
		c.Chat.DefaultMaxWebResults = 5
	}
	if c.Chat.MaxPapersCap <= 0 {
		c.Chat.MaxPapersCap = 50
	}
	if c.Chat.MaxWebResultsCap <= 0 {
		c.Chat.MaxWebResultsCap = 10
	}
	if c.Chat.DisplayCap <= 0 {
		c.Chat.DisplayCap = 3
	}
	if c.Chat.AbstractSnippetLen <= 0 {
		c.Chat.AbstractSnippetLen = 200
	}
	if c.Chat.CategoryFilter == "" {
		c.Chat.CategoryFilter = "quant-ph"
	}
	if c.Chat.MaxSessionTurns <= 0 {
		c.Chat.MaxSessionTurns = 20
	}
}
