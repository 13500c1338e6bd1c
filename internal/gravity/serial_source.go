package gravity

import (
	"bufio"
	"io"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// Transducer names used by IMUs that report gravity over NMEA 0183 XDR
// sentences, e.g. $IIXDR,A,0.61,G,GRAVX,A,0.12,G,GRAVY*hh
const (
	xdrGravityX = "GRAVX"
	xdrGravityY = "GRAVY"
)

// SerialSource reads gravity components from XDR transducer sentences on a
// serial port.
type SerialSource struct {
	port   io.ReadWriteCloser
	reader *bufio.Reader
}

// NewSerialSource opens the serial port at the given baud rate.
func NewSerialSource(portName string, baudRate uint) (*SerialSource, error) {
	serialOpts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, err
	}

	return &SerialSource{
		port:   port,
		reader: bufio.NewReader(port),
	}, nil
}

// Next blocks until an XDR sentence carrying both gravity axes arrives.
// Partial or unparseable lines are skipped; sentences of other types are
// ignored.
func (s *SerialSource) Next() (*Sample, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy port or partial sentence
			continue
		}

		if sentence.DataType() != nmea.TypeXDR {
			continue
		}

		if sample := sampleFromXDR(sentence.(nmea.XDR)); sample != nil {
			return sample, nil
		}
	}
}

// sampleFromXDR extracts the gravity components from an XDR sentence's
// transducer measurements. Returns nil unless both axes are present.
func sampleFromXDR(x nmea.XDR) *Sample {
	var sample Sample
	var haveX, haveY bool
	for _, m := range x.Measurements {
		switch m.TransducerName {
		case xdrGravityX:
			sample.X = m.Value
			haveX = true
		case xdrGravityY:
			sample.Y = m.Value
			haveY = true
		}
	}
	if haveX && haveY {
		return &sample
	}
	return nil
}

// Close releases the serial port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
