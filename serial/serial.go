// Package serial opens the serial port of a GSM modem and connects the AT command engine to it.
package serial

import (
	"errors"
	"io"
	"strings"

	"github.com/jacobsa/go-serial/serial"
	"github.com/sirupsen/logrus"

	"github.com/ftl/smsc-pdu/com"
	"github.com/ftl/smsc-pdu/smsc"
)

// DefaultBaudRate of most USB GSM modems.
const DefaultBaudRate = 115200

var (
	NoModemFound = errors.New("no GSM modem found")
)

// Open the modem at the given port. If the baud rate is zero, DefaultBaudRate is used.
func Open(portName string, baudRate uint) (*com.COM, io.Closer, error) {
	return OpenWithLogger(portName, baudRate, logrus.StandardLogger())
}

// OpenWithLogger opens the modem at the given port and traces the AT communication to the given logger.
func OpenWithLogger(portName string, baudRate uint, logger logrus.FieldLogger) (*com.COM, io.Closer, error) {
	device, err := openSerial(portName, baudRate)
	if err != nil {
		return nil, nil, err
	}
	logger.WithFields(logrus.Fields{"port": portName, "baud": baudRate}).Info("modem port opened")

	return com.NewWithLogger(device, logger.WithField("port", portName)), device, nil
}

var findModemPortName = FindModemPortName

// OpenConfigured opens the modem port of the given configuration. If no port is configured,
// the first serial device that looks like a GSM modem is used.
func OpenConfigured(cfg smsc.Config, logger logrus.FieldLogger) (*com.COM, io.Closer, error) {
	portName := cfg.ModemPort
	if portName == "" {
		var err error
		portName, err = findModemPortName()
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("port", portName).Info("modem port detected")
	}
	return OpenWithLogger(portName, cfg.ModemBaudRate, logger)
}

func openSerial(portName string, baudRate uint) (io.ReadWriteCloser, error) {
	if portName == "" {
		return nil, NoModemFound
	}
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	portConfig := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     true,
		MinimumReadSize:       1,
		InterCharacterTimeout: 100,
	}

	return serial.Open(portConfig)
}

// modemKeywords identify the description of a GSM modem port.
var modemKeywords = []string{"gsm", "modem", "sms", "huawei", "quectel", "simcom", "sierra", "telit", "u-blox"}

func isModemDescription(description string) bool {
	for _, keyword := range modemKeywords {
		if strings.Contains(strings.ToLower(description), keyword) {
			return true
		}
	}
	return false
}
