package fwriter

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrLocked 目标文件正在被其他写入器使用.
var ErrLocked = errors.New("output has been locked by another writer")

// outputLock 输出文件旁的 <fn>.lock 排他锁, 防止两个写入器同时产出同一个目标文件.
type outputLock struct {
	path string
	fd   int
	held bool
}

func newOutputLock(fn string) *outputLock {
	return &outputLock{
		path: fn + ".lock",
		fd:   -1,
	}
}

// acquire 以非阻塞方式获取排他锁.
func (l *outputLock) acquire() error {
	fd, err := syscall.Open(l.path, syscall.O_CREAT|syscall.O_RDONLY|syscall.O_CLOEXEC, 0600)
	if err != nil {
		return errors.Wrapf(err, "open lock %s", l.path)
	}
	if err := syscall.Flock(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		// the fd opened above is useless without the lock
		if cerr := syscall.Close(fd); cerr != nil {
			log.Warn().Err(cerr).Msgf("failed to close lock %s", l.path)
		}
		if err == syscall.EWOULDBLOCK {
			return errors.Wrapf(ErrLocked, "lock %s", l.path)
		}
		return errors.Wrapf(err, "flock %s", l.path)
	}
	l.fd = fd
	l.held = true
	return nil
}

// release 释放锁并删除锁文件, 可重复调用.
// The lock file is removed while still locked, so a waiting writer never locks a stale inode.
func (l *outputLock) release() {
	if !l.held {
		return
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msgf("failed to remove lock %s", l.path)
	}
	if err := syscall.Close(l.fd); err != nil {
		log.Warn().Err(err).Msgf("failed to release lock %s", l.path)
	}
	l.fd = -1
}
