package client

import (
	"errors"
	"io"
	"runtime"

	"github.com/tarm/serial"
)

// serialConn adapts a serial port to the Conn interface. Serial links
// have no half-close; the end-of-instructions opcode alone signals
// shutdown to the firmware.
type serialConn struct {
	io.ReadWriteCloser
}

func (serialConn) CloseWrite() error { return nil }

// OpenSerial opens a direct serial link to a machine attached over
// USB-serial instead of the network. With an empty device name the
// platform's usual candidates are probed.
func OpenSerial(dev string) (Conn, error) {
	const baudRate = 115200

	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else {
		switch runtime.GOOS {
		case "windows":
			devices = append(devices, "COM3")
		case "linux":
			devices = append(devices, "/dev/ttyUSB0", "/dev/ttyUSB1")
		case "darwin":
			devices = append(devices, "/dev/tty.usbserial")
		}
	}
	if len(devices) == 0 {
		return nil, errors.New("client: no serial device specified")
	}
	var firstErr error
	for _, d := range devices {
		p, err := serial.OpenPort(&serial.Config{Name: d, Baud: baudRate})
		if err == nil {
			return serialConn{p}, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
