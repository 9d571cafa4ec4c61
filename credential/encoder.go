package credential

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const recordFormatVersionCurrent = 1

// ErrCorruptRecord is returned when a stored blob does not decode.
var ErrCorruptRecord = errors.New("credential record corrupt")

// Encode serializes a record to the versioned binary wire format:
// a version byte, uint16 length-prefixed strings, big-endian integers.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionCurrent)

	if err := writeString(&buf, r.ID); err != nil {
		return nil, err
	}
	if err := writeString(&buf, r.OwnerID); err != nil {
		return nil, err
	}
	if err := writeString(&buf, r.CurrentHash); err != nil {
		return nil, err
	}

	if len(r.History) > math.MaxUint8 {
		return nil, errors.New("history too long")
	}
	buf.WriteByte(byte(len(r.History)))
	for _, entry := range r.History {
		if err := writeString(&buf, entry.Hash); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, entry.ChangedAt); err != nil {
			return nil, err
		}
	}

	buf.WriteByte(byte(r.Status))

	buf.Write(r.ResetTokenHash[:])
	if err := binary.Write(&buf, binary.BigEndian, r.ResetExpiresAt); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, r.Version); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.UpdatedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by Encode.
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorruptRecord
	}
	if version != recordFormatVersionCurrent {
		return nil, ErrCorruptRecord
	}

	r := &Record{}

	if r.ID, err = readString(reader); err != nil {
		return nil, ErrCorruptRecord
	}
	if r.OwnerID, err = readString(reader); err != nil {
		return nil, ErrCorruptRecord
	}
	if r.CurrentHash, err = readString(reader); err != nil {
		return nil, ErrCorruptRecord
	}

	historyLen, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorruptRecord
	}
	if historyLen > 0 {
		r.History = make([]HistoryEntry, 0, historyLen)
		for i := 0; i < int(historyLen); i++ {
			var entry HistoryEntry
			if entry.Hash, err = readString(reader); err != nil {
				return nil, ErrCorruptRecord
			}
			if err := binary.Read(reader, binary.BigEndian, &entry.ChangedAt); err != nil {
				return nil, ErrCorruptRecord
			}
			r.History = append(r.History, entry)
		}
	}

	statusByte, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorruptRecord
	}
	r.Status = Status(statusByte)
	if !r.Status.Valid() {
		return nil, ErrCorruptRecord
	}

	if _, err := io.ReadFull(reader, r.ResetTokenHash[:]); err != nil {
		return nil, ErrCorruptRecord
	}
	if err := binary.Read(reader, binary.BigEndian, &r.ResetExpiresAt); err != nil {
		return nil, ErrCorruptRecord
	}

	if err := binary.Read(reader, binary.BigEndian, &r.Version); err != nil {
		return nil, ErrCorruptRecord
	}
	if err := binary.Read(reader, binary.BigEndian, &r.CreatedAt); err != nil {
		return nil, ErrCorruptRecord
	}
	if err := binary.Read(reader, binary.BigEndian, &r.UpdatedAt); err != nil {
		return nil, ErrCorruptRecord
	}

	if reader.Len() != 0 {
		return nil, ErrCorruptRecord
	}

	return r, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return errors.New("string field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
