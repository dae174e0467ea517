// Package processor turns a text-only mail message into a multipart
// message that carries both the original plain text body and an HTML
// rendering of it. Parsing and serialization are left to
// github.com/emersion/go-message; the processor only restructures the
// entity tree.
package processor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/emersion/go-message"
)

// MessageTypeError reports a message whose MIME structure is not one of
// the two shapes the processor knows how to transform. ContentType is
// the media type that was actually found.
type MessageTypeError struct {
	ContentType string
}

func (e *MessageTypeError) Error() string {
	return fmt.Sprintf("unexpected message type %q", e.ContentType)
}

// Renderer converts a plain text body into an HTML document. Failures
// are returned to the caller of Transform unchanged.
type Renderer func(text string) (string, error)

// Processor adds an HTML alternative to parsed mail messages.
type Processor struct {
	render    Renderer
	allow8bit bool
}

// New creates a Processor using the given renderer. With allow8bit set,
// generated HTML parts in a non-ASCII charset are passed through with an
// 8bit transfer encoding instead of being re-encoded.
func New(render Renderer, allow8bit bool) *Processor {
	return &Processor{
		render:    render,
		allow8bit: allow8bit,
	}
}

// Transform returns the message restructured to carry an HTML
// alternative next to its plain text body. A single-part text/plain
// message becomes a multipart/alternative container; a multipart
// message whose first part is text/plain gets that part replaced by a
// multipart/alternative container, with the other parts untouched. Any
// other shape fails with a MessageTypeError.
func (p *Processor) Transform(msg *message.Entity) (*message.Entity, error) {
	if msg.MultipartReader() != nil {
		return p.addHTMLToMultipart(msg)
	}
	return p.addHTMLToPlain(msg)
}

// TransformReader parses a raw message and transforms it.
func (p *Processor) TransformReader(r io.Reader) (*message.Entity, error) {
	msg, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to read message: %v", err)
	}
	return p.Transform(msg)
}

// addHTMLToPlain converts a text/plain message into a
// multipart/alternative container holding the original text and a
// rendered HTML sibling.
func (p *Processor) addHTMLToPlain(msg *message.Entity) (*message.Entity, error) {
	mediaType, params := contentType(&msg.Header)
	if msg.MultipartReader() != nil || mediaType != "text/plain" {
		return nil, &MessageTypeError{ContentType: mediaType}
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %v", err)
	}

	textPart, err := cloneTextPart(msg, body)
	if err != nil {
		return nil, err
	}
	htmlPart, err := p.buildHTMLPart(params["charset"], body)
	if err != nil {
		return nil, err
	}

	// According to RFC 2046, the last part of a multipart/alternative
	// message is the preferred rendering, so the HTML part goes last.
	alt, err := message.NewMultipart(alternativeHeader(&msg.Header),
		[]*message.Entity{textPart, htmlPart})
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart/alternative entity: %v", err)
	}
	return alt, nil
}

// addHTMLToMultipart handles a message that is already a multipart
// container, conventionally multipart/mixed with the text body first.
// The first part is replaced by a multipart/alternative container made
// of that part and its HTML rendering; the remaining parts pass through
// unexamined.
func (p *Processor) addHTMLToMultipart(msg *message.Entity) (*message.Entity, error) {
	mr := msg.MultipartReader()
	if mr == nil {
		mediaType, _ := contentType(&msg.Header)
		return nil, &MessageTypeError{ContentType: mediaType}
	}

	textPart, err := mr.NextPart()
	if err == io.EOF {
		mediaType, _ := contentType(&msg.Header)
		return nil, &MessageTypeError{ContentType: mediaType}
	}
	if err != nil && (textPart == nil || !message.IsUnknownCharset(err)) {
		return nil, fmt.Errorf("failed to read part: %v", err)
	}

	mediaType, params := contentType(&textPart.Header)
	if mediaType != "text/plain" {
		return nil, &MessageTypeError{ContentType: mediaType}
	}

	body, err := io.ReadAll(textPart.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %v", err)
	}
	textPart.Body = bytes.NewReader(body)

	htmlPart, err := p.buildHTMLPart(params["charset"], body)
	if err != nil {
		return nil, err
	}

	altHeader := message.Header{}
	altHeader.SetContentType("multipart/alternative", nil)
	alt, err := message.NewMultipart(altHeader, []*message.Entity{textPart, htmlPart})
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart/alternative entity: %v", err)
	}

	rest, err := collectParts(mr)
	if err != nil {
		return nil, err
	}

	mixed, err := message.NewMultipart(msg.Header, append([]*message.Entity{alt}, rest...))
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart entity: %v", err)
	}
	return mixed, nil
}

// collectParts drains a multipart reader into independent entities. The
// reader invalidates a part's body on the next call, so each body is
// buffered.
func collectParts(mr message.MultipartReader) ([]*message.Entity, error) {
	var parts []*message.Entity
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && (part == nil || !message.IsUnknownCharset(err)) {
			return nil, fmt.Errorf("failed to read part: %v", err)
		}
		b, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read part: %v", err)
		}
		part.Body = bytes.NewReader(b)
		parts = append(parts, part)
	}
	return parts, nil
}
