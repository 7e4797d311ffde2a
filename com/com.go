// Package com implements the AT command engine on the serial link to a GSM modem. It sends one command
// at a time, collects the response lines until the final result code, and dispatches unsolicited result
// codes like +CMT to registered indication handlers.
package com

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	readBufferSize     = 1024
	sendingQueueTimout = 500 * time.Millisecond
	idleTick           = 100 * time.Millisecond
	syncRetryDelay     = 200 * time.Millisecond
)

// Terminators of a PDU that follows a command on the next line. A request that ends with one
// of them is sent without a trailing line break.
const (
	CtrlZ  = "\x1a"
	Escape = "\x1b"
)

// ErrorResponse is the final result code of a failed command: ERROR, +CME ERROR, or +CMS ERROR.
type ErrorResponse struct {
	Line string
	Kind string
	// Code is the error code of a +CME ERROR or +CMS ERROR, -1 if the response carries no numeric code.
	Code int
}

func (e *ErrorResponse) Error() string {
	return e.Line
}

var errorResponseExpression = regexp.MustCompile(`^(\+CM[ES] ERROR)\s*:\s*(.*)$`)

func parseErrorResponse(line string) *ErrorResponse {
	sanitized := strings.ToUpper(strings.TrimSpace(line))
	if strings.HasPrefix(sanitized, "ERROR") {
		return &ErrorResponse{Line: line, Kind: "ERROR", Code: -1}
	}
	parts := errorResponseExpression.FindStringSubmatch(sanitized)
	if len(parts) != 3 {
		return nil
	}
	code, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		code = -1
	}
	return &ErrorResponse{Line: line, Kind: parts[1], Code: code}
}

// COM allows to communicate with a GSM modem using AT commands.
type COM struct {
	commands chan command
	closed   chan struct{}
	logger   *logrus.Entry

	indicationsLock sync.RWMutex
	indications     map[string]indicationConfig
}

// New creates a new COM instance using the given io.ReadWriter to communicate with the modem.
func New(device io.ReadWriter) *COM {
	return NewWithLogger(device, logrus.StandardLogger())
}

// NewWithLogger creates a new COM instance that traces all communication on the trace level of the given logger.
func NewWithLogger(device io.ReadWriter, logger logrus.FieldLogger) *COM {
	result := &COM{
		commands:    make(chan command),
		closed:      make(chan struct{}),
		logger:      logger.WithField("component", "at"),
		indications: make(map[string]indicationConfig),
	}
	go result.run(device, readLoop(device))
	return result
}

func (c *COM) run(device io.Writer, lines <-chan string) {
	c.logger.Trace("AT session start")
	defer c.logger.Trace("AT session end")
	defer close(c.closed)

	var activeCommand *command
	var activeIndication *indication
	tick := time.NewTicker(idleTick)
	defer tick.Stop()

	for {
		var cancelled <-chan struct{}
		if activeCommand != nil {
			cancelled = activeCommand.cancelled
		}

		select {
		case line, valid := <-lines:
			if !valid {
				return
			}
			c.logger.WithField("hex", fmt.Sprintf("%X", line)).Tracef("rx: %s", line)

			switch {
			case activeIndication != nil:
				activeIndication.AddLine(line)
				if activeIndication.Complete() {
					activeIndication = nil
				}
			default:
				activeIndication = c.newIndication(line)
				if activeIndication != nil || activeCommand == nil {
					break
				}
				activeCommand.AddLine(line)
				if activeCommand.Complete() {
					activeCommand = nil
				}
			}
		case <-cancelled:
			activeCommand = nil
		case <-tick.C:
		}

		if activeCommand != nil {
			continue
		}
		select {
		case cmd := <-c.commands:
			if len(cmd.request) == 0 {
				break
			}
			txbytes := []byte(cmd.request)
			if !strings.HasSuffix(cmd.request, CtrlZ) && !strings.HasSuffix(cmd.request, Escape) {
				txbytes = append(txbytes, '\r', '\n')
			}
			c.logger.WithField("hex", fmt.Sprintf("%X", txbytes)).Tracef("tx: %s", txbytes)
			_, err := device.Write(txbytes)
			if err != nil {
				cmd.err <- fmt.Errorf("cannot write command: %w", err)
				break
			}
			activeCommand = &cmd
		default:
		}
	}
}

func readLoop(r io.Reader) <-chan string {
	lines := make(chan string, 1)
	go func() {
		defer close(lines)
		buf := make([]byte, readBufferSize)
		currentLine := make([]byte, 0, readBufferSize)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[0:n] {
				switch {
				case b == '\n':
					if len(currentLine) == 0 {
						continue
					}
					lines <- string(currentLine)
					currentLine = currentLine[:0]
				case b < ' ':
					continue
				default:
					currentLine = append(currentLine, b)
				}
			}
			if err != nil {
				if len(currentLine) > 0 {
					lines <- string(currentLine)
				}
				return
			}
		}
	}()
	return lines
}

// Closed indicates if the connection to the device was closed.
func (c *COM) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// AddIndication registers a handler for unsolicited result codes that start with the given prefix.
// The handler receives the indication line and the given number of trailing lines, e.g. the PDU of +CMT.
func (c *COM) AddIndication(prefix string, trailingLines int, handler func(lines []string)) error {
	if prefix == "" {
		return fmt.Errorf("empty indication prefix")
	}
	config := indicationConfig{
		prefix:        strings.ToUpper(prefix),
		trailingLines: trailingLines,
		handler:       handler,
	}

	c.indicationsLock.Lock()
	defer c.indicationsLock.Unlock()
	c.indications[config.prefix] = config
	return nil
}

func (c *COM) newIndication(line string) *indication {
	c.indicationsLock.RLock()
	defer c.indicationsLock.RUnlock()
	for _, config := range c.indications {
		result := config.NewIfMatches(line)
		if result != nil {
			return result
		}
	}
	return nil
}

// Synchronize sends AT until the modem answers with OK. Error responses are retried until the context is done.
func (c *COM) Synchronize(ctx context.Context) error {
	for {
		_, err := c.AT(ctx, "AT")
		if err == nil {
			return nil
		}
		if _, ok := err.(*ErrorResponse); !ok {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(syncRetryDelay):
		}
	}
}

// AT sends the given request and waits for the final result code. It returns the lines of the response.
func (c *COM) AT(ctx context.Context, request string) ([]string, error) {
	cmd := command{
		request:   request,
		response:  make(chan []string, 1),
		err:       make(chan error, 1),
		cancelled: ctx.Done(),
		completed: make(chan struct{}),
	}

	select {
	case c.commands <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, io.ErrClosedPipe
	case <-time.After(sendingQueueTimout):
		return nil, fmt.Errorf("AT sending queue timeout")
	}

	select {
	case response := <-cmd.response:
		return response, nil
	case err := <-cmd.err:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, io.ErrClosedPipe
	}
}

// Request implements gsm.Requester.
func (c *COM) Request(ctx context.Context, request string) ([]string, error) {
	return c.AT(ctx, request)
}

// ATs sends the given requests one after the other and stops at the first failing request.
func (c *COM) ATs(ctx context.Context, requests ...string) error {
	for _, request := range requests {
		_, err := c.AT(ctx, request)
		if err != nil {
			return fmt.Errorf("%s failed: %w", request, err)
		}
	}
	return nil
}

type indicationConfig struct {
	prefix        string
	trailingLines int
	handler       func(lines []string)
}

func (c indicationConfig) NewIfMatches(line string) *indication {
	if !strings.HasPrefix(strings.ToUpper(line), c.prefix) {
		return nil
	}
	result := &indication{config: c}
	result.AddLine(line)
	if result.Complete() {
		return nil
	}
	return result
}

type indication struct {
	config indicationConfig
	lines  []string
}

func (ind *indication) AddLine(line string) {
	if ind.Complete() {
		return
	}

	ind.lines = append(ind.lines, line)
	if ind.Complete() {
		go ind.config.handler(ind.lines)
	}
}

func (ind *indication) Complete() bool {
	return len(ind.lines) >= ind.config.trailingLines+1
}

type command struct {
	lines     []string
	request   string
	response  chan []string
	err       chan error
	cancelled <-chan struct{}
	completed chan struct{}
}

func (c *command) AddLine(line string) {
	if c.Complete() {
		return
	}

	if strings.EqualFold(strings.TrimSpace(line), "OK") {
		c.response <- c.lines
		close(c.completed)
		return
	}
	if errorResponse := parseErrorResponse(line); errorResponse != nil {
		c.err <- errorResponse
		close(c.completed)
		return
	}
	c.lines = append(c.lines, line)
}

func (c *command) Complete() bool {
	select {
	case <-c.cancelled:
		return true
	case <-c.completed:
		return true
	default:
		return false
	}
}
