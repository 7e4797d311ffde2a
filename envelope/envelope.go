// Package envelope implements the MIME encoding of SMS PDUs in the content type application/vnd.3gpp.sms.
// A single PDU is carried as the plain body, several PDUs are carried as parts of a multipart/related body.
package envelope

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	related "github.com/philippfranke/multipart-related/related"
)

// Media types
const (
	SMSContentType       = "application/vnd.3gpp.sms"
	MultipartContentType = "multipart/related"
)

// Errors reported by Unwrap and Wrap.
var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrMalformedEnvelope      = errors.New("malformed envelope")
)

// Envelope is the MIME representation of one or more PDUs.
type Envelope struct {
	ContentType string
	Header      textproto.MIMEHeader
	PDUs        [][]byte
	body        []byte
}

// Bytes returns the body of the envelope.
func (e Envelope) Bytes() []byte {
	return e.body
}

// Wrap the given PDUs into an envelope. The boundaries of the PDUs are preserved exactly.
func Wrap(pdus [][]byte) (Envelope, error) {
	if len(pdus) == 0 {
		return Envelope{}, fmt.Errorf("%w: no PDU to wrap", ErrMalformedEnvelope)
	}
	for i, pdu := range pdus {
		if len(pdu) == 0 {
			return Envelope{}, fmt.Errorf("%w: PDU %d is empty", ErrMalformedEnvelope, i)
		}
	}

	if len(pdus) == 1 {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Type", SMSContentType)
		return Envelope{
			ContentType: SMSContentType,
			Header:      header,
			PDUs:        pdus,
			body:        bytes.Clone(pdus[0]),
		}, nil
	}

	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")
	var body bytes.Buffer
	w := related.NewWriter(&body)
	w.SetBoundary(boundary)

	var err error
	for i, pdu := range pdus {
		header := make(textproto.MIMEHeader)
		header.Set("Content-ID", "<"+uuid.NewString()+">")
		header.Set("Content-Transfer-Encoding", "binary")

		var part io.Writer
		if i == 0 {
			part, err = w.CreateRoot("", SMSContentType, header)
		} else {
			header.Set("Content-Type", SMSContentType)
			part, err = w.CreatePart("", header)
		}
		if err != nil {
			return Envelope{}, fmt.Errorf("cannot create part %d: %w", i, err)
		}
		_, err = part.Write(pdu)
		if err != nil {
			return Envelope{}, fmt.Errorf("cannot write part %d: %w", i, err)
		}
	}
	err = w.Close()
	if err != nil {
		return Envelope{}, err
	}

	contentType := mime.FormatMediaType(MultipartContentType, map[string]string{
		"type":     SMSContentType,
		"boundary": boundary,
	})
	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", contentType)
	return Envelope{
		ContentType: contentType,
		Header:      header,
		PDUs:        pdus,
		body:        body.Bytes(),
	}, nil
}

// Unwrap recovers the PDUs from the given body, according to the declared content type.
func Unwrap(body []byte, contentType string) ([][]byte, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedContentType, contentType, err)
	}

	switch mediaType {
	case SMSContentType:
		if len(body) == 0 {
			return nil, fmt.Errorf("%w: empty body", ErrMalformedEnvelope)
		}
		return [][]byte{bytes.Clone(body)}, nil
	case MultipartContentType:
		if rootType, ok := params["type"]; ok && !strings.EqualFold(rootType, SMSContentType) {
			return nil, fmt.Errorf("%w: multipart/related of type %q", ErrUnsupportedContentType, rootType)
		}
		if params["boundary"] == "" {
			return nil, fmt.Errorf("%w: missing boundary", ErrMalformedEnvelope)
		}
		return unwrapParts(body, params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, mediaType)
	}
}

func unwrapParts(body []byte, params map[string]string) ([][]byte, error) {
	r := related.NewReader(bytes.NewReader(body), params)

	var result [][]byte
	for i := 0; ; i++ {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: part %d: %v", ErrMalformedEnvelope, i, err)
		}
		if part == nil {
			break
		}

		partType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil || partType != SMSContentType {
			return nil, fmt.Errorf("%w: part %d has content type %q", ErrUnsupportedContentType, i, part.Header.Get("Content-Type"))
		}
		pdu, err := readPart(part, part.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			return nil, fmt.Errorf("%w: part %d: %v", ErrMalformedEnvelope, i, err)
		}
		if len(pdu) == 0 {
			return nil, fmt.Errorf("%w: part %d is empty", ErrMalformedEnvelope, i)
		}
		result = append(result, pdu)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no parts", ErrMalformedEnvelope)
	}
	return result, nil
}

func readPart(r io.Reader, transferEncoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "", "binary", "8bit":
		return io.ReadAll(r)
	case "base64":
		return io.ReadAll(base64.NewDecoder(base64.StdEncoding, r))
	default:
		return nil, fmt.Errorf("unsupported transfer encoding %q", transferEncoding)
	}
}
