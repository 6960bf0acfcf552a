package ollama

import "bytes"

// lineCursor tracks how much of a growing buffer has been consumed.
type lineCursor struct {
	offset int
}

// next returns the newline-terminated lines after the cursor and advances
// past them. A trailing fragment without a newline stays unconsumed.
func (c *lineCursor) next(data []byte) [][]byte {
	var lines [][]byte
	for c.offset < len(data) {
		idx := bytes.IndexByte(data[c.offset:], '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, bytes.TrimSuffix(data[c.offset:c.offset+idx], []byte("\r")))
		c.offset += idx + 1
	}

	return lines
}

// rest consumes whatever remains after the cursor.
func (c *lineCursor) rest(data []byte) []byte {
	if c.offset >= len(data) {
		return nil
	}
	tail := data[c.offset:]
	c.offset = len(data)

	return tail
}
