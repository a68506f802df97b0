package protocol

// maxText keeps a record frame inside MessageLengthMax: header, trailer,
// level and tick (at most 1 + 5 bytes) and the string length prefix.
const maxText = MessageLengthMax - MessageLengthMin - 1 - 5 - 2

// EncodeRecord appends one framed record to output. Text longer than the
// frame allows is truncated.
func EncodeRecord(output OutputBuffer, seq uint8, r Record) {
	text := r.Text
	if len(text) > maxText {
		text = text[:maxText]
	}

	cursor := output.CurPosition()
	output.Output([]byte{0, MessageDest | (seq & MessageSeqMask)})

	EncodeVLQUint(output, uint32(r.Level))
	EncodeVLQUint(output, r.Tick)
	EncodeVLQString(output, text)

	length := len(output.DataSince(cursor)) + MessageTrailerSize
	output.Update(cursor, uint8(length))

	crc := CRC16(output.DataSince(cursor))
	output.Output([]byte{
		uint8(crc >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
}

// DecodeRecord decodes the payload of one frame
func DecodeRecord(payload []byte) (Record, error) {
	level, err := DecodeVLQUint(&payload)
	if err != nil {
		return Record{}, err
	}
	tick, err := DecodeVLQUint(&payload)
	if err != nil {
		return Record{}, err
	}
	text, err := DecodeVLQString(&payload)
	if err != nil {
		return Record{}, err
	}
	return Record{Level: Level(level), Tick: tick, Text: text}, nil
}
