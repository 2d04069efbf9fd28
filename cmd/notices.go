package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/bnema/copytrade-cli/internal/domain"
)

type noticeLog struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (l *noticeLog) add(n domain.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.notices = append(l.notices, n)
}

func (l *noticeLog) drain() []domain.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.notices
	l.notices = nil
	return out
}

// flush prints the collected notices, one per line.
func (l *noticeLog) flush(w io.Writer) {
	for _, n := range l.drain() {
		prefix := "ok"
		if n.Kind == domain.NoticeError {
			prefix = "error"
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, n.Text)
	}
}
