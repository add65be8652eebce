package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/catalogctl/internal/client/services"
	"github.com/google/uuid"
)

// consoleNotifier prints service notifications as single lines. Loading
// indicators get a short id that is repeated on the line reporting their
// outcome.
type consoleNotifier struct {
	mu    sync.Mutex
	w     io.Writer
	newID func() string
}

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{
		w:     w,
		newID: func() string { return uuid.NewString()[:8] },
	}
}

func (n *consoleNotifier) Success(msg string) { n.print("[ok]", msg) }
func (n *consoleNotifier) Error(msg string)   { n.print("[erro]", msg) }

func (n *consoleNotifier) Loading(msg string) services.Pending {
	id := n.newID()
	n.print("[..]", fmt.Sprintf("%s (%s)", msg, id))
	return &consolePending{n: n, id: id}
}

func (n *consoleNotifier) print(tag, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, tag, msg)
}

// consolePending resolves at most once; later outcomes are ignored.
type consolePending struct {
	n    *consoleNotifier
	id   string
	once sync.Once
}

func (p *consolePending) Success(msg string) {
	p.once.Do(func() { p.n.print("[ok]", fmt.Sprintf("%s (%s)", msg, p.id)) })
}

func (p *consolePending) Error(msg string) {
	p.once.Do(func() { p.n.print("[erro]", fmt.Sprintf("%s (%s)", msg, p.id)) })
}

var (
	_ services.Notifier = (*consoleNotifier)(nil)
	_ services.Pending  = (*consolePending)(nil)
)
