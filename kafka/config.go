package kafka

import (
	"os"
	"time"

	"github.com/Shopify/sarama"
	"github.com/rs/zerolog/log"
)

const (
	__DefaultIdleTimeout = 5 * time.Second
)

// Config kafka接入配置
type Config struct {
	Brokers    []string `json:"brokers"`
	Topic      string   `json:"topic"`
	FromOldest bool     `json:"from_oldest"`
	ClientID   string   `json:"client_id"`
}

// PartitionSourceCfg 分区源配置
type PartitionSourceCfg struct {
	MaxMessages int           // 读取的消息数上限, 0表示不限
	IdleTimeout time.Duration // 超过该时间没有新消息即视为分区读完
}

func (cfg *PartitionSourceCfg) withDefaults() PartitionSourceCfg {
	var c PartitionSourceCfg
	if cfg != nil {
		c = *cfg
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = __DefaultIdleTimeout
	}
	return c
}

// NewConfig 返回sarama配置.
func NewConfig(cfg *Config) *sarama.Config {
	conf := sarama.NewConfig()
	if cfg.FromOldest {
		conf.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	if cfg.ClientID != "" {
		conf.ClientID = cfg.ClientID
	}
	GetKafkaAccessEnv(conf)
	return conf
}

// GetKafkaAccessEnv 从环境变量读取SASL账号.
func GetKafkaAccessEnv(cfg *sarama.Config) {
	usr := os.Getenv("KAFKA_USERNAME")
	pwd := os.Getenv("KAFKA_PASSWORD")
	if usr == "" || pwd == "" {
		log.Warn().Msg("access kafka without SASL setting")
		return
	}
	cfg.Net.SASL.Enable = true
	cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	cfg.Net.SASL.User = usr
	cfg.Net.SASL.Password = pwd
	cfg.Net.SASL.Version = sarama.SASLHandshakeV1
}
