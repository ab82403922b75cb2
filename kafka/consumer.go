package kafka

import (
	"io"

	"github.com/Shopify/sarama"
	"github.com/rs/zerolog/log"
)

// OpenPartitionSource 连接kafka并将指定分区作为一个源打开.
// offset < 0 means sarama.OffsetOldest or sarama.OffsetNewest depending on cfg.FromOldest.
func OpenPartitionSource(cfg *Config, partition int32, offset int64, srcCfg *PartitionSourceCfg) (io.ReadCloser, error) {
	client, err := sarama.NewClient(cfg.Brokers, NewConfig(cfg))
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to kafka")
		return nil, err
	}
	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		log.Error().Err(err).Msg("failed to create kafka consumer")
		client.Close() // nolint
		return nil, err
	}

	if offset < 0 {
		if cfg.FromOldest {
			offset = sarama.OffsetOldest
		} else {
			offset = sarama.OffsetNewest
		}
	}

	pc, err := consumer.ConsumePartition(cfg.Topic, partition, offset)
	if err != nil {
		log.Error().Err(err).Msgf("failed to consume kafka partition, partition: %v, offset: %v", partition, offset)
		consumer.Close() // nolint
		client.Close()   // nolint
		return nil, err
	}
	log.Info().Msgf("open kafka partition source, topic: %v, partition: %v, offset: %v", cfg.Topic, partition, offset)

	src := NewPartitionSource(pc, srcCfg)
	src.closers = []io.Closer{consumer, client}
	return src, nil
}
