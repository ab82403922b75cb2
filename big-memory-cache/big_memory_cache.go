package bigmemcache

import (
	"bytes"
	"io"
	"io/ioutil"
	"time"

	"github.com/allegro/bigcache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	streamio "github.com/usherasnick/concat-stream/stream-io"
)

const (
	__DefaultEvictionTime = 100 * 365 * 24 * time.Hour
	__DefaultShardsFactor = 100
	__DefaultMaxShards    = 128
	__OneMB               = 1024 * 1024

	__DefaultMaxNumOfSegment  = 1024
	__DefaultMaxSizeOfSegment = 64 * 1024
)

// ErrSegmentNotFound 缓存中不存在该分段.
var ErrSegmentNotFound = errors.New("segment not found")

// SegmentCacheCfg SegmentCache配置
type SegmentCacheCfg struct {
	MaxNumOfSegment  uint64 // 最多可缓存的分段数量
	MaxSizeOfSegment uint64 // 分段大小, unit is byte
}

// defaultBigCacheCfg works on a copy, the caller's cfg is left untouched.
func (cfg SegmentCacheCfg) defaultBigCacheCfg() bigcache.Config {
	if cfg.MaxNumOfSegment == 0 {
		cfg.MaxNumOfSegment = __DefaultMaxNumOfSegment
	}
	if cfg.MaxSizeOfSegment == 0 {
		cfg.MaxSizeOfSegment = __DefaultMaxSizeOfSegment
	}

	bcCfg := bigcache.DefaultConfig(__DefaultEvictionTime)
	bcCfg.Verbose = false

	shardsUpLimit := uint(cfg.MaxNumOfSegment/__DefaultShardsFactor) + 1
	bcCfg.Shards = int(findNearestPowerOf2Num(shardsUpLimit))
	if bcCfg.Shards > __DefaultMaxShards {
		bcCfg.Shards = __DefaultMaxShards
	}

	// init 10 entries for each shard.
	bcCfg.MaxEntriesInWindow = 10 * bcCfg.Shards
	bcCfg.MaxEntrySize = int(cfg.MaxSizeOfSegment) + segmentHeaderSize

	bcCfg.HardMaxCacheSize = int((cfg.MaxNumOfSegment*cfg.MaxSizeOfSegment)/__OneMB) + 1
	return bcCfg
}

// SegmentCache 在内存中缓存字节分段, 并将多个分段作为一个连续的流读出.
// Segments are stored serialized to keep them out of the GC's way.
type SegmentCache struct {
	cache *bigcache.BigCache
}

// NewSegmentCache 返回SegmentCache实例.
func NewSegmentCache(cfg *SegmentCacheCfg) (*SegmentCache, error) {
	if cfg == nil {
		cfg = &SegmentCacheCfg{}
	}
	cache, err := bigcache.NewBigCache(cfg.defaultBigCacheCfg())
	if err != nil {
		return nil, err
	}
	return &SegmentCache{
		cache: cache,
	}, nil
}

// Put 将分段写入缓存, 已存在的同名分段会被覆盖.
func (sc *SegmentCache) Put(key string, data []byte) error {
	encoded, err := encodeSegment(key, data)
	if err != nil {
		return err
	}
	return sc.cache.Set(key, encoded)
}

// Del 从缓存中删除分段.
func (sc *SegmentCache) Del(key string) error {
	// mark-deletion in bigcache
	return sc.cache.Delete(key)
}

// Get 返回分段内容.
func (sc *SegmentCache) Get(key string) ([]byte, error) {
	v, err := sc.cache.Get(key)
	if err != nil || v == nil {
		return nil, errors.Wrapf(ErrSegmentNotFound, "key %q", key)
	}
	seg, err := decodeSegment(v)
	if err != nil {
		return nil, err
	}
	if seg.key != key {
		// hash collision inside bigcache
		return nil, errors.Wrapf(ErrSegmentNotFound, "key %q (collides with %q)", key, seg.key)
	}
	return seg.data, nil
}

// Open 将分段作为一个源打开.
func (sc *SegmentCache) Open(key string) (io.ReadCloser, error) {
	data, err := sc.Get(key)
	if err != nil {
		return nil, err
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

// Concat 按顺序打开所有分段并拼接为一个流.
// Either every key is opened or none: sources already opened are released on failure.
func (sc *SegmentCache) Concat(keys ...string) (*streamio.ConcatReader, error) {
	sources := make([]io.ReadCloser, 0, len(keys))
	for _, key := range keys {
		src, err := sc.Open(key)
		if err != nil {
			for _, opened := range sources {
				opened.Close() // nolint
			}
			return nil, err
		}
		sources = append(sources, src)
	}
	log.Debug().Msgf("concat %d cached segments", len(sources))
	return streamio.NewConcatReader(sources)
}

// Len 返回SegmentCache当前缓存的分段数量.
func (sc *SegmentCache) Len() int {
	return sc.cache.Len()
}

// Reset 真正意义上去清理缓存.
func (sc *SegmentCache) Reset() error {
	return sc.cache.Reset()
}
