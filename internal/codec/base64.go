package codec

import (
	"encoding/base64"
	"strings"
)

// Base64 is the decode/encode capability used by the auth filters. Callers
// never see which decode path executed; the fallback lives entirely here.
type Base64 interface {
	EncodeToString(src []byte) string
	DecodeString(s string) ([]byte, error)
}

// Std decodes with encoding/base64 and falls back to a table-based decoder
// for inputs the strict decoder rejects (stray whitespace, junk bytes).
type Std struct{}

func NewStd() Std { return Std{} }

func (Std) EncodeToString(src []byte) string {
	return base64.StdEncoding.EncodeToString(src)
}

func (Std) DecodeString(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return decodeTable(s)
}

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

// decodeTable is a manual base64 decoder. It strips non-alphabet bytes first,
// then decodes quartets, honoring '=' padding.
func decodeTable(s string) ([]byte, error) {
	var clean strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) >= 0 {
			clean.WriteByte(s[i])
		}
	}
	str := clean.String()
	if len(str)%4 != 0 {
		return nil, base64.CorruptInputError(len(str))
	}

	out := make([]byte, 0, len(str)/4*3)
	for i := 0; i < len(str); i += 4 {
		e1 := strings.IndexByte(alphabet, str[i])
		e2 := strings.IndexByte(alphabet, str[i+1])
		e3 := strings.IndexByte(alphabet, str[i+2])
		e4 := strings.IndexByte(alphabet, str[i+3])

		// '=' is index 64; only valid in the last two positions.
		if e1 == 64 || e2 == 64 {
			return nil, base64.CorruptInputError(int64(i))
		}

		out = append(out, byte(e1<<2|e2>>4))
		if e3 != 64 {
			out = append(out, byte((e2&15)<<4|e3>>2))
		}
		if e4 != 64 {
			out = append(out, byte((e3&3)<<6|e4))
		}
	}
	return out, nil
}
