package kafka

import (
	"io"
	"time"

	"github.com/Shopify/sarama"
	"github.com/rs/zerolog/log"
)

// PartitionSource 将一个分区中消息的Value依次拼接为字节流.
//
// The stream ends after MaxMessages messages, when the partition consumer is closed
// by someone else, or when no message arrives within IdleTimeout. Read fills p
// completely unless the stream ended, so a short read always means the partition is done.
type PartitionSource struct {
	pc      sarama.PartitionConsumer
	cfg     PartitionSourceCfg
	closers []io.Closer

	pending  []byte
	consumed int
	done     bool
	closed   bool
}

// NewPartitionSource 返回PartitionSource实例, 接管pc的关闭.
func NewPartitionSource(pc sarama.PartitionConsumer, cfg *PartitionSourceCfg) *PartitionSource {
	return &PartitionSource{
		pc:  pc,
		cfg: cfg.withDefaults(),
	}
}

// Consumed 返回已读取的消息数.
func (s *PartitionSource) Consumed() int {
	return s.consumed
}

func (s *PartitionSource) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) == 0 {
			if s.done || !s.next() {
				s.done = true
				break
			}
			continue
		}
		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	if n == 0 && s.done && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *PartitionSource) next() bool {
	if s.closed {
		return false
	}
	if s.cfg.MaxMessages > 0 && s.consumed >= s.cfg.MaxMessages {
		return false
	}

	timer := time.NewTimer(s.cfg.IdleTimeout)
	defer timer.Stop()

	select {
	case msg, ok := <-s.pc.Messages():
		if !ok {
			return false
		}
		s.consumed++
		s.pending = msg.Value
		return true
	case <-timer.C:
		log.Info().Msgf("no message within %s, partition source ends after %d messages", s.cfg.IdleTimeout, s.consumed)
		return false
	}
}

// Close 关闭分区消费者以及其依赖的连接.
func (s *PartitionSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true

	err := s.pc.Close()
	if err != nil {
		log.Warn().Err(err).Msg("failed to close partition consumer")
	}
	for _, c := range s.closers {
		if cerr := c.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close kafka connection")
			if err == nil {
				err = cerr
			}
		}
	}
	return err
}
