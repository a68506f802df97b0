package protocol

import "testing"

var scannerRecords = []Record{
	{Level: LevelInfo, Tick: 0, Text: "tick 0"},
	{Level: LevelError, Tick: 50, Text: "hip write failed"},
	{Level: LevelDebug, Tick: 1000000, Text: "trace"},
}

func encodeFrames(t *testing.T) [][]byte {
	t.Helper()
	frames := make([][]byte, len(scannerRecords))
	for i, r := range scannerRecords {
		output := NewScratchOutput()
		EncodeRecord(output, uint8(i), r)
		frames[i] = append([]byte(nil), output.Result()...)
	}
	return frames
}

func join(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

func TestScannerWholeStream(t *testing.T) {
	var got []Record
	s := NewScanner(func(seq uint8, r Record) { got = append(got, r) })

	s.Feed(join(encodeFrames(t)...))

	if len(got) != len(scannerRecords) {
		t.Fatalf("Expected %d records, got %d", len(scannerRecords), len(got))
	}
	for i := range got {
		if got[i] != scannerRecords[i] {
			t.Errorf("Record %d: expected %+v, got %+v", i, scannerRecords[i], got[i])
		}
	}
	if s.BadFrames != 0 || s.SeqGaps != 0 {
		t.Errorf("Clean stream: bad %d gaps %d", s.BadFrames, s.SeqGaps)
	}
}

func TestScannerByteAtATime(t *testing.T) {
	var seqs []uint8
	s := NewScanner(func(seq uint8, r Record) { seqs = append(seqs, seq) })

	for _, b := range join(encodeFrames(t)...) {
		s.Feed([]byte{b})
	}

	if len(seqs) != 3 || seqs[0] != 0 || seqs[1] != 1 || seqs[2] != 2 {
		t.Errorf("Expected sequences [0 1 2], got %v", seqs)
	}
}

func TestScannerJoinsMidFrame(t *testing.T) {
	frames := encodeFrames(t)
	var got []Record
	s := NewScanner(func(seq uint8, r Record) { got = append(got, r) })

	// Tail of a frame whose start was missed
	s.Feed(join(frames[0][2:], frames[1], frames[2]))

	if len(got) != 2 || got[0] != scannerRecords[1] || got[1] != scannerRecords[2] {
		t.Errorf("Expected the two complete records, got %+v", got)
	}
	if s.BadFrames != 1 {
		t.Errorf("Expected 1 bad frame, got %d", s.BadFrames)
	}
}

func TestScannerCorruptFrame(t *testing.T) {
	frames := encodeFrames(t)
	frames[1][6] ^= 0x20

	var got []Record
	s := NewScanner(func(seq uint8, r Record) { got = append(got, r) })
	s.Feed(join(frames...))

	if len(got) != 2 || got[0] != scannerRecords[0] || got[1] != scannerRecords[2] {
		t.Errorf("Expected first and last records, got %+v", got)
	}
	if s.BadFrames != 1 {
		t.Errorf("Expected 1 bad frame, got %d", s.BadFrames)
	}
	if s.SeqGaps != 1 {
		t.Errorf("Expected 1 sequence gap, got %d", s.SeqGaps)
	}
}
