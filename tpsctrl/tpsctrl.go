package tpsctrl

import (
	"io"
	"time"

	"github.com/juju/ratelimit"
	"github.com/rs/zerolog/log"
)

// BandwidthController 用于调控源的读取速率, 所有被包装的源共享同一个令牌桶.
type BandwidthController struct {
	quota  int64
	bucket *ratelimit.Bucket
}

// NewBandwidthController 返回BandwidthController实例.
// Max(bytes/s) == quota, quota <= 0 表示不限速.
func NewBandwidthController(quota int64) *BandwidthController {
	ctrl := BandwidthController{}
	ctrl.quota = quota
	if quota <= 0 {
		return &ctrl
	}

	// 每秒补满一次令牌桶
	ctrl.bucket = ratelimit.NewBucketWithQuantum(time.Second, quota, quota)
	log.Debug().Msgf("throttle sources to %d bytes/s", ctrl.quota)
	return &ctrl
}

// Wrap 返回限速后的源, 关闭时关闭原始的源.
func (ctrl *BandwidthController) Wrap(rc io.ReadCloser) io.ReadCloser {
	if ctrl.bucket == nil {
		return rc
	}
	return &throttledSource{
		r:  ratelimit.Reader(rc, ctrl.bucket),
		rc: rc,
	}
}

// WrapAll 对每个源调用Wrap.
func (ctrl *BandwidthController) WrapAll(sources []io.ReadCloser) []io.ReadCloser {
	if sources == nil {
		return nil
	}
	out := make([]io.ReadCloser, len(sources))
	for i, rc := range sources {
		out[i] = ctrl.Wrap(rc)
	}
	return out
}

type throttledSource struct {
	r  io.Reader
	rc io.ReadCloser
}

func (s *throttledSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *throttledSource) Close() error {
	return s.rc.Close()
}
