package keypad

import (
	"bufio"
	"context"
	"io"
	"strings"
	"unicode"
)

// ReadConsole forwards every keypad character typed on r into q until ctx is done or r ends.
// Whitespace and unknown characters are skipped; letters are accepted in either case.
func ReadConsole(ctx context.Context, r io.Reader, q *Queue) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for _, ch := range strings.TrimSpace(sc.Text()) {
			k := Key(unicode.ToUpper(ch))
			if !k.Valid() {
				continue
			}
			q.Push(k)
		}
	}
	return sc.Err()
}
