package protocol

import "bytes"

// Scanner extracts records from a byte stream that may start mid-frame or
// lose bytes in transit. Damaged frames are skipped up to the next sync byte.
type Scanner struct {
	input   *FifoBuffer
	handler func(seq uint8, r Record)

	nextSeq uint8
	synced  bool

	// Statistics
	Frames    uint32
	BadFrames uint32
	SeqGaps   uint32
}

// NewScanner creates a scanner that calls handler for every valid record
func NewScanner(handler func(seq uint8, r Record)) *Scanner {
	return &Scanner{
		input:   NewFifoBuffer(MessageMax * 2),
		handler: handler,
	}
}

// Feed appends received bytes and processes every complete frame
func (s *Scanner) Feed(data []byte) {
	for len(data) > 0 {
		n := s.input.Write(data)
		data = data[n:]
		s.process()
		if n == 0 && s.input.Free() == 0 {
			// Buffer full of unparseable data
			s.input.Reset()
			s.BadFrames++
		}
	}
}

func (s *Scanner) process() {
	for {
		data := s.input.Data()
		if len(data) == 0 {
			return
		}

		msglen := int(data[MessagePositionLen])
		if msglen < MessageLengthMin || msglen > MessageLengthMax {
			s.discard(data)
			continue
		}
		if len(data) < msglen {
			// 0x7E is also a valid length, so a stray sync byte waits
			// here until enough data arrives to reject it.
			return
		}

		frame := data[:msglen]
		seqByte := frame[MessagePositionSeq]
		if seqByte&^MessageSeqMask != MessageDest || frame[msglen-MessageTrailerSync] != MessageValueSync {
			s.discard(data)
			continue
		}

		crc := CRC16(frame[:msglen-MessageTrailerCRC])
		if frame[msglen-3] != uint8(crc>>8) || frame[msglen-2] != uint8(crc&0xFF) {
			s.discard(data)
			continue
		}

		r, err := DecodeRecord(frame[MessageHeaderSize : msglen-MessageTrailerSize])
		s.input.Pop(msglen)
		if err != nil {
			s.BadFrames++
			continue
		}

		seq := seqByte & MessageSeqMask
		if s.synced && seq != s.nextSeq {
			s.SeqGaps++
		}
		s.synced = true
		s.nextSeq = (seq + 1) & MessageSeqMask
		s.Frames++

		if s.handler != nil {
			s.handler(seq, r)
		}
	}
}

// discard drops a damaged frame up to and including the next sync byte
func (s *Scanner) discard(data []byte) {
	s.BadFrames++
	idx := bytes.IndexByte(data, MessageValueSync)
	if idx < 0 {
		s.input.Pop(len(data))
		return
	}
	s.input.Pop(idx + 1)
}
