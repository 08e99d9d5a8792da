package input

import "encoding/binary"

// Linux input-event-codes.h
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport = 0

	absX           = 0x00
	absY           = 0x01
	absMTPositionX = 0x35
	absMTPositionY = 0x36

	btnLeft  = 0x110
	btnTouch = 0x14a

	keyE  = 18
	keyN  = 49
	keyF4 = 62
)

// record is one input_event without its timestamp.
type record struct {
	Type  uint16
	Code  uint16
	Value int32
}

// decodeRecords parses a read buffer as a sequence of input_event structs.
// input_event = timeval + u16 type + u16 code + s32 value. A trailing
// partial record is ignored.
func decodeRecords(buf []byte, tvSize int) []record {
	size := tvSize + 8
	var out []record
	for off := 0; off+size <= len(buf); off += size {
		rec := buf[off : off+size]
		out = append(out, record{
			Type:  binary.LittleEndian.Uint16(rec[tvSize : tvSize+2]),
			Code:  binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4]),
			Value: int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8])),
		})
	}
	return out
}

type axisRange struct {
	Min, Max int32
}

func (a axisRange) size() int {
	if a.Max <= a.Min {
		return 0
	}
	return int(a.Max-a.Min) + 1
}

func (a axisRange) offset(v int32) int {
	n := a.size()
	if n == 0 {
		return int(v)
	}
	o := int(v - a.Min)
	if o < 0 {
		return 0
	}
	if o >= n {
		return n - 1
	}
	return o
}

// touchTracker turns a stream of records from one device into events. A
// press is reported as a Tap at the position current at the next
// SYN_REPORT, so the axes sent in the same frame are already applied.
type touchTracker struct {
	xRange, yRange axisRange
	x, y           int32
	down           bool
	pressed        bool
}

func (t *touchTracker) handle(rec record) (Event, bool) {
	switch rec.Type {
	case evAbs:
		switch rec.Code {
		case absX, absMTPositionX:
			t.x = rec.Value
		case absY, absMTPositionY:
			t.y = rec.Value
		}
	case evKey:
		switch rec.Code {
		case btnTouch, btnLeft:
			if rec.Value == 1 && !t.down {
				t.pressed = true
			}
			t.down = rec.Value != 0
		case keyF4:
			if rec.Value == 1 {
				return Event{Kind: Exit}, true
			}
		case keyE:
			if rec.Value == 1 {
				return Event{Kind: Eraser}, true
			}
		case keyN:
			if rec.Value == 1 {
				return Event{Kind: Next}, true
			}
		}
	case evSyn:
		if rec.Code == synReport && t.pressed {
			t.pressed = false
			return Event{
				Kind:   Tap,
				X:      t.xRange.offset(t.x),
				Y:      t.yRange.offset(t.y),
				Width:  t.xRange.size(),
				Height: t.yRange.size(),
			}, true
		}
	}
	return Event{}, false
}
