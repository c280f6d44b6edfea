package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxStringLength is the maximum declared string length accepted on decode (1 MB)
	MaxStringLength = 1024 * 1024

	// MaxUserListLength is the maximum declared entry count in a user list
	MaxUserListLength = 4096
)

var (
	// ErrMalformedMessage indicates a structurally invalid message: an
	// unknown type tag or an impossible declared length.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrTruncatedStream indicates the stream ended before the bytes a
	// message declared were available.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrStringTooLong is returned when encoding a string over MaxStringLength.
	ErrStringTooLong = errors.New("string exceeds maximum length (1 MB)")
)

// WriteInt32 writes a 32-bit signed integer in big-endian
func WriteInt32(w io.Writer, v int32) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	_, err := w.Write(buf)
	return err
}

// ReadInt32 reads a 32-bit signed integer in big-endian. A short read is
// reported as ErrTruncatedStream.
func ReadInt32(r io.Reader) (int32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, truncated(err)
	}
	return int32(binary.BigEndian.Uint32(buf)), nil
}

// WriteBool writes a boolean as a single byte (0x00 or 0x01)
func WriteBool(w io.Writer, v bool) error {
	b := []byte{0x00}
	if v {
		b[0] = 0x01
	}
	_, err := w.Write(b)
	return err
}

// ReadBool reads a boolean from a single byte
func ReadBool(r io.Reader) (bool, error) {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return false, truncated(err)
	}
	return buf[0] != 0x00, nil
}

// WriteString writes a length-prefixed UTF-8 string.
// Format: [Length (int32, big-endian)][Data (N bytes UTF-8)]
func WriteString(w io.Writer, s string) error {
	data := []byte(s)
	if len(data) > MaxStringLength {
		return ErrStringTooLong
	}

	if err := WriteInt32(w, int32(len(data))); err != nil {
		return err
	}

	if len(data) > 0 {
		_, err := w.Write(data)
		return err
	}
	return nil
}

// ReadString reads a length-prefixed UTF-8 string
func ReadString(r io.Reader) (string, error) {
	length, err := ReadInt32(r)
	if err != nil {
		return "", err
	}

	if length < 0 {
		return "", fmt.Errorf("%w: negative string length %d", ErrMalformedMessage, length)
	}
	if length > MaxStringLength {
		return "", fmt.Errorf("%w: declared string length %d exceeds maximum", ErrMalformedMessage, length)
	}
	if length == 0 {
		return "", nil
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", truncated(err)
	}

	return string(data), nil
}

// WriteStringList writes a counted sequence of length-prefixed strings.
// Format: [Count (int32)][String]...[String]
func WriteStringList(w io.Writer, list []string) error {
	if err := WriteInt32(w, int32(len(list))); err != nil {
		return err
	}
	for _, s := range list {
		if err := WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

// ReadStringList reads a counted sequence of length-prefixed strings, order preserved
func ReadStringList(r io.Reader) ([]string, error) {
	count, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}

	if count < 0 {
		return nil, fmt.Errorf("%w: negative list count %d", ErrMalformedMessage, count)
	}
	if count > MaxUserListLength {
		return nil, fmt.Errorf("%w: declared list count %d exceeds maximum", ErrMalformedMessage, count)
	}

	list := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		s, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}

// truncated maps end-of-stream conditions from io.ReadFull onto
// ErrTruncatedStream. Other I/O errors pass through unchanged.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncatedStream, err)
	}
	return err
}
