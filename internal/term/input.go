package term

import (
	"bufio"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/brettbedarf/nsshell"
	"github.com/brettbedarf/nsshell/internal/util"
)

// Pump decodes UTF-8 runes from r and hands them to h one at a time until r is
// exhausted or ctx is done. io.EOF is not reported as an error.
//
// Cancellation is only observed between keys; a blocked read returns when r does.
func Pump(ctx context.Context, r io.Reader, h nsshell.KeyHandler) error {
	logger := util.GetLogger("term.Pump")
	br := bufio.NewReader(r)
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ch, size, err := br.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug().Int("keys", n).Msg("Input closed")
				return nil
			}
			return err
		}
		if ch == utf8.RuneError && size == 1 {
			logger.Trace().Msg("Skipping invalid UTF-8 byte")
			continue
		}
		h.HandleKey(nsshell.Key(ch))
		n++
	}
}
