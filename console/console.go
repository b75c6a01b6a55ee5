// Package console renders the joke bot's terminal dialogue and reads the
// user's answers.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// ErrInvalidSelection is returned by Select for input that is not one of the
// offered indexes.
var ErrInvalidSelection = errors.New("invalid selection")

const rule = "======================================================="

// Console is a line-oriented terminal dialogue. It is safe for concurrent
// use, though the bot only ever drives it from one goroutine.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out *termenv.Output

	// A single goroutine reads input so that a cancelled read can be
	// abandoned without losing the line it eventually returns.
	startRead sync.Once
	lines     chan inputLine
}

type inputLine struct {
	text string
	err  error
}

// Option configures a Console.
type Option func(*termenvOptions)

type termenvOptions struct {
	opts []termenv.OutputOption
}

// WithProfile forces a color profile; termenv.Ascii disables styling.
func WithProfile(p termenv.Profile) Option {
	return func(o *termenvOptions) {
		o.opts = append(o.opts, termenv.WithProfile(p))
	}
}

// New creates a Console reading answers from r and writing to w.
func New(r io.Reader, w io.Writer, opts ...Option) *Console {
	var o termenvOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Console{
		in:  bufio.NewReader(r),
		out: termenv.NewOutput(w, o.opts...),
	}
}

// Status is the session state shown above the menu.
type Status struct {
	Category  string
	Language  string
	JokesTold int
}

// Summary is printed when a session ends.
type Summary struct {
	JokesTold int
	Category  string
	Language  string
	Steps     int

	// Err is the reason the session was aborted, if it was.
	Err error
}

func (c *Console) style(s, color string) termenv.Style {
	return c.out.String(s).Foreground(c.out.Color(color))
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Banner prints the welcome banner.
func (c *Console) Banner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println()
	c.println(c.style("🎉 WELCOME TO THE JOKEGRAPH JOKE BOT 🎉", "#c084fc").Bold())
	c.println("Agentic workflow on a state graph")
	c.println()
}

// Menu shows the status box and the options, then reads the user's choice,
// trimmed and lower-cased. It returns io.EOF when input is exhausted and
// ctx.Err() when ctx is done before a line arrives.
func (c *Console) Menu(ctx context.Context, s Status) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println()
	c.println(rule)
	c.println(fmt.Sprintf("🎭 Category : %s", strings.ToUpper(s.Category)))
	c.println(fmt.Sprintf("🌐 Language : %s", s.Language))
	c.println(fmt.Sprintf("😂 Jokes Told : %d", s.JokesTold))
	c.println(rule)
	fmt.Fprint(c.out, "[n] Next Joke  [c] Change Category  [l] Change Language  [r] Reset History  [q] Quit\n> ")

	line, err := c.readLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.ToLower(line), nil
}

// Select prints title and the numbered options, then reads an index.
// Input that is not a listed index yields ErrInvalidSelection.
func (c *Console) Select(ctx context.Context, title string, options []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println()
	c.println(title + ":")
	for i, opt := range options {
		c.println(fmt.Sprintf("[%d] %s", i, opt))
	}
	fmt.Fprint(c.out, "> ")

	line, err := c.readLine(ctx)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 || n >= len(options) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, line)
	}
	return n, nil
}

// Joke prints a joke.
func (c *Console) Joke(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println()
	c.println(c.style("😂 "+text, "#34d399"))
}

// Notice prints an informational line.
func (c *Console) Notice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println()
	c.println(c.style(text, "#fbbf24"))
}

// PrintSummary prints the end-of-session report.
func (c *Console) PrintSummary(s Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println()
	c.println(c.style("📊 SESSION SUMMARY", "#818cf8").Bold())
	c.println(fmt.Sprintf("Jokes told : %d", s.JokesTold))
	c.println(fmt.Sprintf("Category   : %s", s.Category))
	c.println(fmt.Sprintf("Language   : %s", s.Language))
	c.println(fmt.Sprintf("Steps      : %d", s.Steps))
	if s.Err != nil {
		c.println(c.style("Session aborted: "+s.Err.Error(), "#fb7185"))
	}
	c.println("Thank you for using the Joke Bot!")
}

// readLine returns the next input line without surrounding whitespace.
// A final line without a newline is still returned; io.EOF means no input was
// left. It gives up with ctx.Err() when ctx is done first.
func (c *Console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.startRead.Do(func() {
		c.lines = make(chan inputLine)
		go c.pump()
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// pump feeds input lines to readLine until the input fails or ends.
func (c *Console) pump() {
	defer close(c.lines)
	for {
		line, err := c.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line != "" {
				c.lines <- inputLine{text: strings.TrimSpace(line)}
			}
			if !errors.Is(err, io.EOF) {
				c.lines <- inputLine{err: err}
			}
			return
		}
		c.lines <- inputLine{text: strings.TrimSpace(line)}
	}
}
