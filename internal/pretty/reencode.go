package pretty

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/kurobon/gitgraph/internal/objstore"
)

// Reencode transcodes commit's retained buffer from its declared
// "encoding" header (default "utf-8") to outputEncoding, and rewrites
// or removes that header in the result to match. It returns (nil, nil)
// when no transcoding is needed and the caller should keep using
// commit.Buffer unchanged.
func Reencode(commit *objstore.Node, outputEncoding string) ([]byte, error) {
	if outputEncoding == "" || commit.Buffer == nil {
		return nil, nil
	}

	declared, hadHeader, err := getHeader(commit.Buffer, "encoding")
	if err != nil {
		return nil, err
	}
	use := declared
	if use == "" {
		use = "utf-8"
	}

	var out []byte
	if strings.EqualFold(use, outputEncoding) {
		if !hadHeader {
			return nil, nil
		}
		out = append([]byte(nil), commit.Buffer...)
	} else {
		transcoded, err := transcode(commit.Buffer, use, outputEncoding)
		if err != nil {
			return nil, err
		}
		out = transcoded
	}
	return replaceEncodingHeader(out, outputEncoding)
}

// getHeader scans buf's header block (everything before the first
// blank line) for a "<key> <value>" line, returning the value and
// whether it was found.
func getHeader(buf []byte, key string) (value string, found bool, err error) {
	prefix := []byte(key + " ")
	for len(buf) > 0 {
		nl := bytes.IndexByte(buf, '\n')
		var line []byte
		if nl < 0 {
			if bytes.HasPrefix(buf, prefix) {
				return "", false, fmt.Errorf("%w", ErrMalformedEncodingHeader)
			}
			return "", false, nil
		}
		line, buf = buf[:nl], buf[nl+1:]
		if len(line) == 0 {
			return "", false, nil
		}
		if bytes.HasPrefix(line, prefix) {
			return string(line[len(prefix):]), true, nil
		}
	}
	return "", false, nil
}

func transcode(data []byte, from, to string) ([]byte, error) {
	decEnc, err := ianaindex.IANA.Encoding(from)
	if err != nil || decEnc == nil {
		return nil, fmt.Errorf("pretty: unknown source encoding %q: %w", from, err)
	}
	encEnc, err := ianaindex.IANA.Encoding(to)
	if err != nil || encEnc == nil {
		return nil, fmt.Errorf("pretty: unknown target encoding %q: %w", to, err)
	}
	utf8, err := decEnc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("pretty: decode from %q: %w", from, err)
	}
	out, err := encEnc.NewEncoder().Bytes(utf8)
	if err != nil {
		return nil, fmt.Errorf("pretty: encode to %q: %w", to, err)
	}
	return out, nil
}

// replaceEncodingHeader rewrites buf's "encoding" header line to name
// encoding, or removes the line entirely when encoding is utf-8 (the
// implicit default, so an explicit header would be redundant).
func replaceEncodingHeader(buf []byte, encoding string) ([]byte, error) {
	headerEnd := bytes.Index(buf, []byte("\n\n"))
	encStart := bytes.Index(buf, []byte("\nencoding "))
	if encStart < 0 || (headerEnd >= 0 && encStart >= headerEnd) {
		return buf, nil
	}

	lineStart := encStart + 1
	rel := bytes.IndexByte(buf[lineStart:], '\n')
	if rel < 0 {
		return nil, fmt.Errorf("%w", ErrMalformedEncodingHeader)
	}
	lineEnd := lineStart + rel + 1

	if strings.EqualFold(encoding, "utf-8") || strings.EqualFold(encoding, "utf8") {
		out := make([]byte, 0, len(buf)-(lineEnd-lineStart))
		out = append(out, buf[:lineStart]...)
		out = append(out, buf[lineEnd:]...)
		return out, nil
	}

	out := make([]byte, 0, len(buf))
	out = append(out, buf[:lineStart]...)
	out = append(out, []byte("encoding "+encoding+"\n")...)
	out = append(out, buf[lineEnd:]...)
	return out, nil
}
