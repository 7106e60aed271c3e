package logging

import (
	"os"
	"sync"
)

const bytesPerMB = 1024 * 1024

// cappedFile appends to a log file and truncates it once the next write
// would cross the size cap.
type cappedFile struct {
	mu      sync.Mutex
	path    string
	limit   int64
	file    *os.File
	written int64
}

func openCappedFile(path string, maxMB int) (*cappedFile, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	c := &cappedFile{path: path, limit: int64(maxMB) * bytesPerMB}
	if err := c.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *cappedFile) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.file == nil:
		if err := c.open(os.O_APPEND); err != nil {
			return 0, err
		}
	case c.written+int64(len(p)) > c.limit:
		_ = c.file.Close()
		if err := c.open(os.O_TRUNC); err != nil {
			return 0, err
		}
	}
	n, err := c.file.Write(p)
	c.written += int64(n)
	return n, err
}

func (c *cappedFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// open must be called with mu held (or before the file is shared).
func (c *cappedFile) open(mode int) error {
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		c.file = nil
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		c.file = nil
		return err
	}
	c.file = f
	c.written = info.Size()
	return nil
}
