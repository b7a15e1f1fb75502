// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"tuner/internal/tuning"
)

/*
Packet layout, big endian:

	+-----------------+---------+------+------------------------------------+
	| Field           | Type    | Size | Description                        |
	+-----------------+---------+------+------------------------------------+
	| Sequence        | uint32  | 4    | Publisher packet counter           |
	| Snapshot seq    | uint64  | 8    | Engine snapshot sequence           |
	| Timestamp       | int64   | 8    | Snapshot time, ns since epoch      |
	| Status          | uint8   | 1    | tuning.Status                      |
	| Flags           | uint8   | 1    | bit 0: stable                      |
	| Frequency       | float32 | 4    | Smoothed frequency, Hz             |
	| Target          | float32 | 4    | Target frequency, Hz               |
	| Cents           | float32 | 4    | Deviation from target              |
	| Level           | float32 | 4    | Mean signal power                  |
	| Label length    | uint8   | 1    | N                                  |
	| Label           | bytes   | N    | Note label, UTF-8                  |
	+-----------------+---------+------+------------------------------------+
*/

const flagStable = 1 << 0

// maxLabel bounds the note label carried in a packet.
const maxLabel = math.MaxUint8

// header is the fixed-size part of a packet.
type header struct {
	Sequence    uint32
	SnapshotSeq uint64
	Timestamp   int64
	Status      uint8
	Flags       uint8
	Frequency   float32
	Target      float32
	Cents       float32
	Level       float32
	LabelLen    uint8
}

// HeaderSize is the packet size without the label.
var HeaderSize = binary.Size(header{})

// ErrShortPacket is returned by Decode for truncated packets.
var ErrShortPacket = errors.New("udp: short packet")

// Packet is a decoded snapshot datagram.
type Packet struct {
	Sequence    uint32
	SnapshotSeq uint64
	Time        time.Time
	Status      tuning.Status
	Stable      bool
	Frequency   float64
	Target      float64
	Cents       float64
	Level       float64
	Note        string
}

// Encode appends the packet for snap to buf.
func Encode(buf *bytes.Buffer, seq uint32, snap tuning.Snapshot) error {
	label := snap.Note
	if len(label) > maxLabel {
		label = label[:maxLabel]
	}

	h := header{
		Sequence:    seq,
		SnapshotSeq: snap.Sequence,
		Timestamp:   snap.Time.UnixNano(),
		Status:      uint8(snap.Status),
		Frequency:   float32(snap.DetectedFreq),
		Target:      float32(snap.TargetFreq),
		Cents:       float32(snap.Cents),
		Level:       float32(snap.SignalLevel),
		LabelLen:    uint8(len(label)),
	}
	if snap.Stable {
		h.Flags |= flagStable
	}

	if err := binary.Write(buf, binary.BigEndian, &h); err != nil {
		return fmt.Errorf("udp: encode header: %w", err)
	}
	buf.WriteString(label)
	return nil
}

// Decode parses a packet produced by Encode.
func Decode(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(data))
	}

	var h header
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.BigEndian, &h); err != nil {
		return Packet{}, fmt.Errorf("udp: decode header: %w", err)
	}
	rest := data[HeaderSize:]
	if len(rest) < int(h.LabelLen) {
		return Packet{}, fmt.Errorf("%w: label needs %d bytes, have %d", ErrShortPacket, h.LabelLen, len(rest))
	}

	return Packet{
		Sequence:    h.Sequence,
		SnapshotSeq: h.SnapshotSeq,
		Time:        time.Unix(0, h.Timestamp),
		Status:      tuning.Status(h.Status),
		Stable:      h.Flags&flagStable != 0,
		Frequency:   float64(h.Frequency),
		Target:      float64(h.Target),
		Cents:       float64(h.Cents),
		Level:       float64(h.Level),
		Note:        string(rest[:h.LabelLen]),
	}, nil
}
