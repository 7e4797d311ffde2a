// Package ctrl provides the GSM 07.05 and 07.07 control commands that are needed to exchange
// short messages in PDU mode with a GSM modem.
package ctrl

import (
	"fmt"
	"strings"
)

// MessageFormatByName returns the MessageFormat with the given name
func MessageFormatByName(name string) (MessageFormat, error) {
	sanitized := strings.ToUpper(strings.TrimSpace(name))
	result, ok := MessageFormatsByName[sanitized]
	if !ok {
		return 0, fmt.Errorf("invalid message format %s", name)
	}
	return result, nil
}

// MessageFormat of the SMS commands according to [SMS] 3.2.3
type MessageFormat byte

func (f MessageFormat) String() string {
	for k, v := range MessageFormatsByName {
		if v == f {
			return k
		}
	}
	return "UNKNOWN"
}

// All message formats
const (
	PDUMode MessageFormat = iota
	TextMode
)

// MessageFormatsByName maps all message formats by their string representation
var MessageFormatsByName = map[string]MessageFormat{
	"PDU":  PDUMode,
	"TEXT": TextMode,
}

// NewMessageIndications configures how the modem reports new messages, see +CNMI in [SMS] 3.4.1
type NewMessageIndications struct {
	Mode                int
	Deliver             int
	Broadcast           int
	StatusReport        int
	BufferedResultsMode int
}

// RouteToTerminal lets the modem forward new messages as +CMT and status reports as +CDS directly to the terminal.
var RouteToTerminal = NewMessageIndications{
	Mode:         2,
	Deliver:      2,
	StatusReport: 1,
}
