package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeRecordFrame(t *testing.T) {
	output := NewScratchOutput()
	EncodeRecord(output, 0, Record{Level: LevelInfo, Tick: 0, Text: "tick 0"})

	expected := []byte{14, 0x10, 1, 0, 6, 't', 'i', 'c', 'k', ' ', '0', 0xD9, 0x9C, MessageValueSync}
	if got := output.Result(); !bytes.Equal(got, expected) {
		t.Errorf("Frame mismatch:\n got  %v\n want %v", got, expected)
	}
}

func TestEncodeRecordSequence(t *testing.T) {
	output := NewScratchOutput()
	EncodeRecord(output, 0x13, Record{Level: LevelError, Tick: 50, Text: "x"})

	frame := output.Result()
	if frame[MessagePositionSeq] != MessageDest|0x03 {
		t.Errorf("Sequence byte: expected 0x13, got 0x%02X", frame[MessagePositionSeq])
	}
	if int(frame[MessagePositionLen]) != len(frame) {
		t.Errorf("Length byte %d does not match frame size %d", frame[MessagePositionLen], len(frame))
	}
}

func TestDecodeRecord(t *testing.T) {
	in := Record{Level: LevelWarn, Tick: 1000000, Text: "trace"}
	output := NewScratchOutput()
	EncodeRecord(output, 2, in)

	frame := output.Result()
	out, err := DecodeRecord(frame[MessageHeaderSize : len(frame)-MessageTrailerSize])
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	if out != in {
		t.Errorf("Expected %+v, got %+v", in, out)
	}
}

func TestEncodeRecordTruncatesText(t *testing.T) {
	output := NewScratchOutput()
	EncodeRecord(output, 0, Record{Level: LevelDebug, Tick: 1<<32 - 1, Text: strings.Repeat("a", 400)})

	frame := output.Result()
	if len(frame) > MessageLengthMax {
		t.Fatalf("Frame of %d bytes exceeds %d", len(frame), MessageLengthMax)
	}
	if int(frame[MessagePositionLen]) != len(frame) {
		t.Errorf("Length byte %d does not match frame size %d", frame[MessagePositionLen], len(frame))
	}

	r, err := DecodeRecord(frame[MessageHeaderSize : len(frame)-MessageTrailerSize])
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	if len(r.Text) != maxText {
		t.Errorf("Expected text truncated to %d, got %d", maxText, len(r.Text))
	}
}

func TestLevelString(t *testing.T) {
	if LevelError.String() != "ERROR" || Level(9).String() != "UNKNOWN" {
		t.Errorf("Unexpected level names %q %q", LevelError, Level(9))
	}
}
