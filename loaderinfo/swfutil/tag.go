package swfutil

import (
	"encoding/binary"
	"fmt"
)

const (
	TagEnd            uint16 = 0
	TagShowFrame      uint16 = 1
	TagFileAttributes uint16 = 69

	fileAttributesActionScript3 = 0x08

	// tag lengths at or above this value use the long record form
	longTagThreshold = 0x3f
)

// Tag is a raw tag record: its code and undecoded body.
type Tag struct {
	Code uint16
	Data []byte
}

// SWF is a header plus the tags that follow it, without the End tag.
type SWF struct {
	Header Header
	Tags   []Tag
}

func appendTag(dst []byte, t Tag) []byte {
	length := len(t.Data)
	if length < longTagThreshold {
		dst = binary.LittleEndian.AppendUint16(dst, t.Code<<6|uint16(length))
	} else {
		dst = binary.LittleEndian.AppendUint16(dst, t.Code<<6|longTagThreshold)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(length))
	}
	return append(dst, t.Data...)
}

// readTagHeader decodes the record header at pos and returns the tag code,
// its body length and the offset of its body.
func readTagHeader(data []byte, pos int) (code uint16, length int, body int, err error) {
	if pos+2 > len(data) {
		return 0, 0, 0, fmt.Errorf("truncated tag header at offset %d", pos)
	}
	codeAndLength := binary.LittleEndian.Uint16(data[pos:])
	code = codeAndLength >> 6
	length = int(codeAndLength & longTagThreshold)
	body = pos + 2
	if length == longTagThreshold {
		if body+4 > len(data) {
			return 0, 0, 0, fmt.Errorf("truncated long tag header at offset %d", pos)
		}
		length = int(binary.LittleEndian.Uint32(data[body:]))
		body += 4
	}
	return code, length, body, nil
}

// ReadTags walks a tag stream up to and including the End tag or the end of
// data, whichever comes first. The End tag is not returned.
func ReadTags(data []byte) ([]Tag, error) {
	var tags []Tag
	pos := 0
	for pos < len(data) {
		code, length, body, err := readTagHeader(data, pos)
		if err != nil {
			return tags, err
		}
		if code == TagEnd {
			break
		}
		if length < 0 || body+length > len(data) {
			return tags, fmt.Errorf("tag %d at offset %d overruns tag stream", code, body)
		}
		tags = append(tags, Tag{Code: code, Data: data[body : body+length]})
		pos = body + length
	}
	return tags, nil
}

// IsActionScript3 reports whether the FileAttributes tag, which must be the
// first tag, marks the movie as ActionScript 3.
func IsActionScript3(data []byte) bool {
	code, length, body, err := readTagHeader(data, 0)
	if err != nil || code != TagFileAttributes || length < 1 || body >= len(data) {
		return false
	}
	return data[body]&fileAttributesActionScript3 != 0
}
