package logtail

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Kind is the display class of a log line.
type Kind int

// Line classes, in increasing severity.
const (
	KindPlain Kind = iota
	KindDebug
	KindUI
	KindInfo
	KindWarn
	KindError
)

var (
	errorPattern = regexp.MustCompile(`(?i)\b(err|error|fatal|panic|exception|traceback)\b`)
	warnPattern  = regexp.MustCompile(`(?i)\b(wrn|warn|warning)\b`)
	debugPattern = regexp.MustCompile(`(?i)\b(dbg|debug|trace)\b`)
	infoPattern  = regexp.MustCompile(`(?i)\b(inf|info)\b|^\[(dse|app)\]`)
)

// Classify picks a display class for a device, overlay or diagnostics line.
func Classify(line string) Kind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return KindPlain
	case strings.HasPrefix(trimmed, "[UI]"), strings.HasPrefix(trimmed, "[PTZ]"):
		if strings.Contains(trimmed, " failed") || strings.Contains(trimmed, " error") {
			return KindError
		}
		return KindUI
	case errorPattern.MatchString(trimmed):
		return KindError
	case warnPattern.MatchString(trimmed):
		return KindWarn
	case debugPattern.MatchString(trimmed):
		return KindDebug
	case infoPattern.MatchString(trimmed):
		return KindInfo
	default:
		return KindPlain
	}
}

// Humanize renders zerolog JSON lines as console text. Lines that are not
// JSON objects are returned unchanged.
func Humanize(lines []string) []string {
	out := make([]string, 0, len(lines))
	var buf bytes.Buffer
	writer := zerolog.ConsoleWriter{Out: &buf, NoColor: true, TimeFormat: "15:04:05"}
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "{") {
			out = append(out, line)
			continue
		}
		buf.Reset()
		if _, err := writer.Write([]byte(line)); err != nil {
			out = append(out, line)
			continue
		}
		out = append(out, strings.TrimRight(buf.String(), "\n"))
	}
	return out
}
