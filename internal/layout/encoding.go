package layout

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// EncodeUTF16 converts a UTF-8 layout document to UTF-16LE with a byte order
// mark, the encoding its header declares.
func EncodeUTF16(doc []byte) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.Bytes(doc)
	if err != nil {
		return nil, fmt.Errorf("layout.EncodeUTF16: %w", err)
	}
	return out, nil
}
