package processor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/emersion/go-message"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// defaultCharset is the 7-bit safe charset assumed when a text part does
// not declare one.
const defaultCharset = "us-ascii"

// buildHTMLPart renders the text payload and wraps the result in a
// text/html leaf carrying the same charset as the source part.
func (p *Processor) buildHTMLPart(charset string, body []byte) (*message.Entity, error) {
	if charset == "" {
		charset = defaultCharset
	}

	html, err := p.renderText(charset, body)
	if err != nil {
		return nil, err
	}

	h := message.Header{}
	h.SetContentType("text/html", map[string]string{"charset": charset})
	part, err := message.New(h, strings.NewReader(html))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to create html part: %v", err)
	}

	if p.allow8bit {
		// How 8bit messages ought to be built is unclear; anything that
		// is not plain ASCII gets flagged as 8bit instead of being
		// re-encoded.
		if !strings.EqualFold(charset, defaultCharset) {
			part.Header.Set("Content-Transfer-Encoding", "8bit")
		}
	} else {
		part.Header.Set("Content-Transfer-Encoding", "quoted-printable")
	}
	return part, nil
}

// renderText runs the renderer over the payload. Renderers work on
// UTF-8, so payloads in other charsets are decoded first and the result
// is encoded back, keeping the part's charset label accurate.
func (p *Processor) renderText(charset string, body []byte) (string, error) {
	enc := lookupEncoding(charset)
	if enc == nil {
		return p.render(string(body))
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s text: %v", charset, err)
	}
	html, err := p.render(string(decoded))
	if err != nil {
		return "", err
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(html))
	if err != nil {
		return "", fmt.Errorf("failed to encode %s text: %v", charset, err)
	}
	return string(out), nil
}

// lookupEncoding resolves a MIME charset name, returning nil for
// charsets that need no conversion or are not registered.
func lookupEncoding(charset string) encoding.Encoding {
	switch strings.ToLower(charset) {
	case "", defaultCharset, "ascii", "utf-8", "utf8":
		return nil
	}
	enc, err := ianaindex.MIME.Encoding(charset)
	if err != nil || enc == nil {
		return nil
	}
	return enc
}

// cloneTextPart copies the original text body into a fresh leaf part
// together with the headers describing how the payload is encoded.
func cloneTextPart(src *message.Entity, body []byte) (*message.Entity, error) {
	h := message.Header{}
	cloneHeader("Content-Type", &src.Header, &h)
	part, err := message.New(h, bytes.NewReader(body))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to create text part: %v", err)
	}
	// The body is already decoded; cloning the encoding header after
	// construction keeps message.New from decoding it a second time.
	cloneHeader("Content-Transfer-Encoding", &src.Header, &part.Header)
	return part, nil
}

// cloneHeader copies a single named field from one header to another,
// leaving the destination untouched when the source lacks the field.
func cloneHeader(name string, src, dst *message.Header) {
	if src.Has(name) {
		dst.Set(name, src.Get(name))
	}
}

// alternativeHeader converts a message envelope into a
// multipart/alternative envelope, keeping every header that does not
// describe the old body structure.
func alternativeHeader(src *message.Header) message.Header {
	var keys, values []string
	fields := src.Fields()
	for fields.Next() {
		switch strings.ToLower(fields.Key()) {
		case "content-type", "content-transfer-encoding", "mime-version":
			continue
		}
		keys = append(keys, fields.Key())
		values = append(values, fields.Value())
	}

	// Fields iterates from the newest field to the oldest and Add puts
	// new fields on top, so adding in reverse keeps the original order.
	h := message.Header{}
	for i := len(keys) - 1; i >= 0; i-- {
		h.Add(keys[i], values[i])
	}
	h.Set("Mime-Version", "1.0")
	h.SetContentType("multipart/alternative", nil)
	return h
}

// contentType reads the media type of a header, applying the RFC 2045
// default when the field is absent.
func contentType(h *message.Header) (string, map[string]string) {
	if !h.Has("Content-Type") {
		return "text/plain", map[string]string{"charset": defaultCharset}
	}
	t, params, err := h.ContentType()
	if err != nil {
		return h.Get("Content-Type"), nil
	}
	return t, params
}
