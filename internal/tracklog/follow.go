package tracklog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/lance13c/ytmon/internal/logging"
)

// Follow calls fn for every entry appended to the log until ctx ends. With
// fromStart the existing entries are replayed first. The directory is
// watched so a log that does not exist yet is picked up once created.
func (f *File) Follow(ctx context.Context, fromStart bool, fn func(Track)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(f.path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	r := &tailReader{path: target}
	if !fromStart {
		if info, err := os.Stat(target); err == nil {
			r.offset = info.Size()
		}
	}
	if err := r.drain(fn); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := r.drain(fn); err != nil {
					return err
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logging.Warn("track log watcher error: %v", err)
		}
	}
}

// tailReader remembers how far into the file it has read and any trailing
// partial line.
type tailReader struct {
	path    string
	offset  int64
	partial []byte
}

func (r *tailReader) drain(fn func(Track)) error {
	fh, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open track log: %w", err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return err
	}
	if info.Size() < r.offset {
		// truncated or replaced
		r.offset = 0
		r.partial = nil
	}

	if _, err := fh.Seek(r.offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(fh)
	if err != nil {
		return err
	}
	r.offset += int64(len(data))

	buf := append(r.partial, data...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		if t, ok := ParseLine(string(buf[:i])); ok {
			fn(t)
		}
		buf = buf[i+1:]
	}
	r.partial = append([]byte(nil), buf...)
	return nil
}
