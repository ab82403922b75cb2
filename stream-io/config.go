package streamio

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// __MaxConsecutiveEmptyReads 在AdvanceOnEOF模式下, 源连续返回0, nil的次数上限.
const __MaxConsecutiveEmptyReads = 100

// AdvancePolicy 决定何时认为当前源已经读完.
type AdvancePolicy int

const (
	// AdvanceOnShortRead 读到的字节数少于请求数(包括0)即视为当前源已读完.
	// Sources that return short reads before their end will lose the rest of their data,
	// see NewFillReader.
	AdvanceOnShortRead AdvancePolicy = iota
	// AdvanceOnEOF 只有源返回io.EOF时才切换到下一个源, 读到部分数据的短读直接返回给调用方.
	AdvanceOnEOF
)

func (p AdvancePolicy) String() string {
	switch p {
	case AdvanceOnShortRead:
		return "short-read"
	case AdvanceOnEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// ConcatReaderCfg ConcatReader配置
type ConcatReaderCfg struct {
	Advance AdvancePolicy
	Logger  *zerolog.Logger // nil表示使用全局logger
}

func (cfg *ConcatReaderCfg) logger() *zerolog.Logger {
	if cfg == nil || cfg.Logger == nil {
		return &log.Logger
	}
	return cfg.Logger
}

func (cfg *ConcatReaderCfg) advance() AdvancePolicy {
	if cfg == nil {
		return AdvanceOnShortRead
	}
	return cfg.Advance
}
