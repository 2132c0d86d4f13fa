package trackclient

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Stream is one live SSE connection. Points carries decoded "point" events
// until the connection ends, after which the channel is closed and Err
// reports why (nil on a clean Close).
type Stream struct {
	Points <-chan Point

	body io.ReadCloser
	ch   chan Point
	done chan struct{}
	err  error
}

func newStream(body io.ReadCloser) *Stream {
	s := &Stream{
		body: body,
		ch:   make(chan Point, 16),
		done: make(chan struct{}),
	}
	s.Points = s.ch
	go s.read()
	return s
}

// Close tears the connection down. The Points channel closes shortly after;
// a receive loop draining it observes the shutdown naturally.
func (s *Stream) Close() error {
	return s.body.Close()
}

// Err reports why the stream ended. Only meaningful after Points is closed.
func (s *Stream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// read parses the SSE wire format: "event:" and "data:" prefixed lines, a
// blank line dispatching the pending event, ":" comment lines (keepalives)
// ignored.
func (s *Stream) read() {
	defer close(s.ch)
	defer close(s.done)
	defer s.body.Close()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if event == "point" && data != "" {
				var p Point
				if err := json.Unmarshal([]byte(data), &p); err == nil {
					s.ch <- p
				}
			}
			event, data = "", ""
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	s.err = scanner.Err()
}
