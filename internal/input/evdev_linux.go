//go:build linux

package input

import (
	"context"
	"encoding/binary"
	"errors"
	"path/filepath"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EvdevSource reads touchscreens, mice and keyboards under /dev/input.
type EvdevSource struct {
	Glob   string
	Logger logger

	ch        chan Event
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewEvdevSource() *EvdevSource {
	return &EvdevSource{Glob: "/dev/input/event*", ch: make(chan Event, 16)}
}

func (s *EvdevSource) Events() <-chan Event { return s.ch }

// Start opens every matching device. It is best-effort: devices that fail
// to open are skipped, and no devices at all is not an error.
func (s *EvdevSource) Start(ctx context.Context) error {
	paths, err := filepath.Glob(s.Glob)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		s.logf("no evdev devices found")
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	tvSize := binary.Size(unix.Timeval{})
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		tracker := &touchTracker{
			xRange: absRange(fd, absX),
			yRange: absRange(fd, absY),
		}
		if s.Logger != nil && tracker.xRange.size() > 0 {
			s.Logger.Infof("input", "%s: touch range %dx%d", path, tracker.xRange.size(), tracker.yRange.size())
		}
		s.wg.Add(1)
		go func(path string, fd int) {
			defer s.wg.Done()
			defer unix.Close(fd)
			s.readLoop(ctx, fd, tvSize, tracker)
		}(path, fd)
	}
	return nil
}

func (s *EvdevSource) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}

func (s *EvdevSource) readLoop(ctx context.Context, fd, tvSize int, tracker *touchTracker) {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for _, rec := range decodeRecords(buf[:n], tvSize) {
			ev, ok := tracker.handle(rec)
			if !ok {
				continue
			}
			select {
			case s.ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *EvdevSource) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Infof("input", format, args...)
	}
}

// input_absinfo from linux/input.h
type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// absRange queries EVIOCGABS(axis). Devices without the axis report an
// empty range.
func absRange(fd int, axis uint) axisRange {
	var info absInfo
	req := uintptr(2<<30 | unsafe.Sizeof(info)<<16 | 'E'<<8 | uintptr(0x40+axis))
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return axisRange{}
	}
	return axisRange{Min: info.Minimum, Max: info.Maximum}
}
