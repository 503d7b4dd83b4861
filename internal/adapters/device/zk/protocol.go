package zk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Command and reply codes of the ZK binary protocol.
const (
	cmdConnect       uint16 = 1000
	cmdExit          uint16 = 1001
	cmdEnableDevice  uint16 = 1002
	cmdGetFreeSizes  uint16 = 50
	cmdUserTempRRQ   uint16 = 9
	cmdAttLogRRQ     uint16 = 13
	cmdPrepareData   uint16 = 1500
	cmdData          uint16 = 1501
	cmdFreeData      uint16 = 1502
	cmdPrepareBuffer uint16 = 1503
	cmdReadBuffer    uint16 = 1504

	ackOK     uint16 = 2000
	ackError  uint16 = 2001
	ackData   uint16 = 2002
	ackUnauth uint16 = 2005

	fctUser = 5

	ushrtMax = 0xFFFF

	tcpMagic1 uint16 = 0x5050
	tcpMagic2 uint16 = 0x7d82

	maxChunk = 0xFFC0
)

// readOnly lists every command this client is allowed to send. Anything
// that writes, clears, or restarts the device is absent on purpose.
var readOnly = map[uint16]bool{
	cmdConnect:       true,
	cmdExit:          true,
	cmdEnableDevice:  true,
	cmdGetFreeSizes:  true,
	cmdPrepareBuffer: true,
	cmdReadBuffer:    true,
	cmdFreeData:      true,
}

var (
	errBadMagic   = errors.New("zk: bad tcp frame header")
	errShortFrame = errors.New("zk: frame shorter than packet header")
)

type packet struct {
	cmd     uint16
	session uint16
	reply   uint16
	data    []byte
}

func (p packet) ok() bool {
	return p.cmd == ackOK || p.cmd == cmdPrepareData || p.cmd == cmdData
}

// checksum is the device's 16-bit ones-complement style sum.
func checksum(b []byte) uint16 {
	sum := 0
	for len(b) > 1 {
		sum += int(binary.LittleEndian.Uint16(b))
		b = b[2:]
		if sum > ushrtMax {
			sum -= ushrtMax
		}
	}
	if len(b) == 1 {
		sum += int(b[0])
	}
	for sum > ushrtMax {
		sum -= ushrtMax
	}
	sum = ^sum
	for sum < 0 {
		sum += ushrtMax
	}
	return uint16(sum)
}

// encodePacket builds a framed request. The checksum covers the current
// reply id while the header carries the next one, matching the firmware.
func encodePacket(cmd, session, reply uint16, data []byte) []byte {
	body := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint16(body[0:], cmd)
	binary.LittleEndian.PutUint16(body[4:], session)
	binary.LittleEndian.PutUint16(body[6:], reply)
	copy(body[8:], data)

	sum := checksum(body)
	next := uint32(reply) + 1
	if next >= ushrtMax {
		next -= ushrtMax
	}
	binary.LittleEndian.PutUint16(body[2:], sum)
	binary.LittleEndian.PutUint16(body[6:], uint16(next))

	frame := make([]byte, 8, 8+len(body))
	binary.LittleEndian.PutUint16(frame[0:], tcpMagic1)
	binary.LittleEndian.PutUint16(frame[2:], tcpMagic2)
	binary.LittleEndian.PutUint32(frame[4:], uint32(len(body)))
	return append(frame, body...)
}

func readPacket(r io.Reader) (packet, error) {
	var top [8]byte
	if _, err := io.ReadFull(r, top[:]); err != nil {
		return packet{}, err
	}
	if binary.LittleEndian.Uint16(top[0:]) != tcpMagic1 || binary.LittleEndian.Uint16(top[2:]) != tcpMagic2 {
		return packet{}, errBadMagic
	}
	n := binary.LittleEndian.Uint32(top[4:])
	if n < 8 {
		return packet{}, errShortFrame
	}
	if n > 16<<20 {
		return packet{}, fmt.Errorf("zk: frame of %d bytes exceeds limit", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return packet{}, err
	}
	return packet{
		cmd:     binary.LittleEndian.Uint16(body[0:]),
		session: binary.LittleEndian.Uint16(body[4:]),
		reply:   binary.LittleEndian.Uint16(body[6:]),
		data:    body[8:],
	}, nil
}

// writePacket is used by the fake device in tests and mirrors encodePacket
// for replies.
func writePacket(w io.Writer, p packet) error {
	_, err := w.Write(encodePacket(p.cmd, p.session, p.reply, p.data))
	return err
}
