// Package protocol frames diagnostic records for the USB serial link.
//
// The framing follows the Klipper message block layout: a length byte, a
// sequence byte, the payload, a CRC16 and a 0x7E sync byte. A reader that
// joins the stream mid-frame, or loses bytes, resynchronizes on the next
// sync byte.
package protocol

// Version represents the strider firmware version
const Version = "0.1.0"

// Frame layout
const (
	MessageMax         = 512 // Scratch buffer size
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 255
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)

// Level is the severity of a diagnostic record
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Record is one human-readable diagnostic line tagged with the control tick
// that produced it.
type Record struct {
	Level Level
	Tick  uint32
	Text  string
}
