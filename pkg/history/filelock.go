package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// fileLock guards the history file against a second ada process writing at
// the same time. It is a sibling ".lock" file created with O_EXCL.
type fileLock struct {
	path     string
	lockPath string
	file     *os.File
	locked   bool
}

type lockConfig struct {
	Timeout    time.Duration
	RetryDelay time.Duration
	StaleAfter time.Duration
}

func defaultLockConfig() lockConfig {
	return lockConfig{
		Timeout:    2 * time.Second,
		RetryDelay: 25 * time.Millisecond,
		StaleAfter: time.Minute,
	}
}

func newFileLock(path string) *fileLock {
	return &fileLock{
		path:     path,
		lockPath: path + ".lock",
	}
}

func (fl *fileLock) Lock(cfg lockConfig) error {
	if fl.locked {
		return errors.New("file is already locked")
	}

	if err := os.MkdirAll(filepath.Dir(fl.lockPath), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(cfg.Timeout)
	for {
		err := fl.tryLock(cfg)
		if err == nil {
			fl.locked = true
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout acquiring lock on %s after %v: %w", fl.path, cfg.Timeout, err)
		}
		time.Sleep(cfg.RetryDelay)
	}
}

func (fl *fileLock) tryLock(cfg lockConfig) error {
	file, err := os.OpenFile(fl.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			if fl.isLockStale(cfg.StaleAfter) {
				os.Remove(fl.lockPath)
			}
			return errors.New("lock already exists")
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	if _, err := fmt.Fprintf(file, "pid:%d\ntime:%s\n", os.Getpid(), time.Now().Format(time.RFC3339)); err != nil {
		file.Close()
		os.Remove(fl.lockPath)
		return fmt.Errorf("failed to write lock info: %w", err)
	}

	fl.file = file
	return nil
}

// isLockStale reports a lock as stale once it is older than staleAfter and
// its owning process is gone.
func (fl *fileLock) isLockStale(staleAfter time.Duration) bool {
	info, err := os.Stat(fl.lockPath)
	if err != nil {
		return true
	}
	if time.Since(info.ModTime()) <= staleAfter {
		return false
	}

	data, err := os.ReadFile(fl.lockPath)
	if err != nil {
		return true
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "pid:%d", &pid); err != nil {
		return true
	}
	return !isProcessRunning(pid)
}

func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func (fl *fileLock) Unlock() error {
	if !fl.locked {
		return nil
	}

	var lastErr error
	if fl.file != nil {
		if err := fl.file.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close lock file: %w", err)
		}
		fl.file = nil
	}
	if err := os.Remove(fl.lockPath); err != nil && lastErr == nil {
		lastErr = fmt.Errorf("failed to remove lock file: %w", err)
	}

	fl.locked = false
	return lastErr
}

func withLock(path string, cfg lockConfig, fn func() error) (err error) {
	lock := newFileLock(path)
	if err := lock.Lock(cfg); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()
	return fn()
}

// atomicWrite writes data to a temp file and renames it over path while
// holding the lock.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	return withLock(path, defaultLockConfig(), func() error {
		tempPath := path + ".tmp"
		if err := os.WriteFile(tempPath, data, perm); err != nil {
			return fmt.Errorf("failed to write temporary file: %w", err)
		}
		if err := os.Rename(tempPath, path); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("failed to rename temporary file: %w", err)
		}
		return nil
	})
}
