package pointmap

import (
	"encoding/hex"
	"log/slog"
)

func hexstr(b []byte) string {
	if b == nil {
		return "<nil>"
	}
	if len(b) == 0 {
		return "<empty>"
	}
	return hex.EncodeToString(b)
}

func hexAttr(key string, b []byte) slog.Attr {
	return slog.String(key, hexstr(b))
}

// head returns a copy of the first n bytes of data.
func head(data []byte, n int) []byte {
	if len(data) < n {
		n = len(data)
	}
	return append([]byte(nil), data[:n]...)
}
