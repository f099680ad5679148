// Package tracklog reads and appends the plain-text track log: one
// "title|artist" line per detected track change.
package tracklog

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Separator between title and artist on a log line
const Separator = "|"

// Track is one observation of the player bar
type Track struct {
	Title  string
	Artist string
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Line formats the track as a log line without the trailing newline.
// Embedded line breaks become spaces so each record stays on one line.
func (t Track) Line() string {
	return lineBreaks.Replace(t.Title) + Separator + lineBreaks.Replace(t.Artist)
}

func (t Track) String() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// ParseLine splits a log line on its last separator.
func ParseLine(line string) (Track, bool) {
	line = strings.TrimRight(line, "\r\n")
	i := strings.LastIndex(line, Separator)
	if i < 0 {
		return Track{}, false
	}
	return Track{Title: line[:i], Artist: line[i+len(Separator):]}, true
}

// File is an append-only track log on disk. It holds no open handle.
type File struct {
	path string
}

// NewFile returns a log bound to path; the file is created on first Append.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the log file location
func (f *File) Path() string {
	return f.path
}

// Append opens the file, writes one line and closes it again.
func (f *File) Append(t Track) error {
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open track log: %w", err)
	}

	if _, err := fh.WriteString(t.Line() + "\n"); err != nil {
		fh.Close()
		return fmt.Errorf("failed to append to track log: %w", err)
	}
	return fh.Close()
}

// ReadAll returns every well-formed entry in file order. A missing file is
// an empty log.
func (f *File) ReadAll() ([]Track, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open track log: %w", err)
	}
	defer fh.Close()

	var tracks []Track
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		if t, ok := ParseLine(scanner.Text()); ok {
			tracks = append(tracks, t)
		}
	}
	if err := scanner.Err(); err != nil {
		return tracks, fmt.Errorf("failed to read track log: %w", err)
	}
	return tracks, nil
}
