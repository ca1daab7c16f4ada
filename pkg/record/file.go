package record

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// Sink receives the records of one session.
type Sink interface {
	Write(Record) error
	Close() error
}

// FileName returns the log file name for a process.
func FileName(pid int, name string) string {
	return fmt.Sprintf("log_pid_%d_name_%s.txt", pid, sanitize(name))
}

// sanitize keeps a process name from escaping the log directory.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, name)
}

var fileNameRe = regexp.MustCompile(`^log_pid_(\d+)_name_(.*)\.txt$`)

// ParseFileName extracts pid and name from a log file path.
func ParseFileName(path string) (pid int, name string, err error) {
	m := fileNameRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, "", fmt.Errorf("%w: file name %q", ErrMalformed, path)
	}
	pid, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("%w: pid: %v", ErrMalformed, err)
	}
	return pid, m[2], nil
}

// File is an append-only Sink guarded by an advisory lock on <path>.lock, so
// two procmon instances never interleave lines in the same file. Each record
// goes straight to the file without buffering; a failed write is reported on
// that very call.
type File struct {
	path string
	f    *os.File
	l    *flock.Flock
}

var _ Sink = (*File)(nil)

// OpenFile opens (creating if needed) the log file for pid/name inside dir.
// dir itself is created when missing.
func OpenFile(dir string, pid int, name string) (*File, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("record: log dir: %w", err)
	}
	path := filepath.Join(dir, FileName(pid, name))

	l := flock.New(path + ".lock")
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("record: lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLockedElsewhere, path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = l.Unlock()
		return nil, fmt.Errorf("record: open %s: %w", path, err)
	}
	return &File{path: path, f: f, l: l}, nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

func (f *File) Write(r Record) error {
	if _, err := io.WriteString(f.f, r.String()+"\n"); err != nil {
		return fmt.Errorf("record: write %s: %w", f.path, err)
	}
	return nil
}

// Close closes the file and releases the lock. The lock file is left behind
// on purpose: removing it would race with another instance taking it.
func (f *File) Close() error {
	err := f.f.Close()
	if uerr := f.l.Unlock(); err == nil {
		err = uerr
	}
	return err
}

// ReadFile parses every line of a log file. Malformed lines abort the read.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses line-delimited records from r, skipping blank lines.
func Read(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}
