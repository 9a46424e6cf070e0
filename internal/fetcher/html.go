package fetcher

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// maxHTMLBytes caps how much of a results page is read into memory.
const maxHTMLBytes = 8 << 20

var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset\s*=\s*["']?([a-zA-Z0-9_\-]+)`)

// ReadHTML reads an HTML document and transcodes it to UTF-8 using the charset
// declared in its <meta> tag. Documents without a declaration are assumed UTF-8.
func ReadHTML(r io.Reader) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxHTMLBytes))
	if err != nil {
		return "", eris.Wrap(err, "html: read body")
	}

	head := body
	if len(head) > 2048 {
		head = head[:2048]
	}
	m := metaCharsetRe.FindSubmatch(head)
	if m == nil {
		return string(body), nil
	}

	charset := strings.ToLower(string(m[1]))
	if charset == "utf-8" || charset == "utf8" {
		return string(body), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", eris.Wrapf(err, "html: unsupported charset %q", charset)
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return "", eris.Wrap(err, "html: transcode body")
	}
	return string(decoded), nil
}
