package envelope

import (
	"mime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapUnwrap(t *testing.T) {
	tt := []struct {
		desc string
		pdus [][]byte
	}{
		{
			desc: "single PDU",
			pdus: [][]byte{{0x04, 0x0B, 0xC8, 0x72, 0x38}},
		},
		{
			desc: "two PDUs",
			pdus: [][]byte{{0x44, 0x03, 0x91}, {0x44, 0x03, 0x91, 0x21}},
		},
		{
			desc: "PDU containing CRLF and dashes",
			pdus: [][]byte{{0x0D, 0x0A, 0x2D, 0x2D}, {0x0D, 0x0A}, {0x00}},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			envelope, err := Wrap(tc.pdus)
			require.NoError(t, err)
			assert.Equal(t, envelope.ContentType, envelope.Header.Get("Content-Type"))

			actual, err := Unwrap(envelope.Bytes(), envelope.ContentType)

			require.NoError(t, err)
			assert.Equal(t, tc.pdus, actual)
		})
	}
}

func TestWrap_ContentType(t *testing.T) {
	single, err := Wrap([][]byte{{0x01}})
	require.NoError(t, err)
	assert.Equal(t, SMSContentType, single.ContentType)
	assert.Equal(t, []byte{0x01}, single.Bytes())

	multi, err := Wrap([][]byte{{0x01}, {0x02}})
	require.NoError(t, err)
	mediaType, params, err := mime.ParseMediaType(multi.ContentType)
	require.NoError(t, err)
	assert.Equal(t, MultipartContentType, mediaType)
	assert.Equal(t, SMSContentType, params["type"])
	assert.NotEmpty(t, params["boundary"])
	assert.Equal(t, 2, strings.Count(string(multi.Bytes()), "Content-Id: <")+strings.Count(string(multi.Bytes()), "Content-ID: <"))
}

func TestWrap_Invalid(t *testing.T) {
	_, err := Wrap(nil)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = Wrap([][]byte{{0x01}, {}})
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestUnwrap(t *testing.T) {
	base64Body := "--b1\r\n" +
		"Content-Type: application/vnd.3gpp.sms\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"AAE=\r\n" +
		"--b1\r\n" +
		"Content-Type: application/vnd.3gpp.sms\r\n" +
		"\r\n" +
		"xyz\r\n" +
		"--b1--\r\n"
	foreignPartBody := "--b1\r\n" +
		"Content-Type: application/vnd.3gpp.sms\r\n" +
		"\r\n" +
		"xyz\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"abc\r\n" +
		"--b1--\r\n"
	emptyPartBody := "--b1\r\n" +
		"Content-Type: application/vnd.3gpp.sms\r\n" +
		"\r\n" +
		"\r\n" +
		"--b1--\r\n"

	tt := []struct {
		desc        string
		body        string
		contentType string
		expected    [][]byte
		expectedErr error
	}{
		{
			desc:        "plain body",
			body:        "\x01\x02",
			contentType: "application/vnd.3gpp.sms",
			expected:    [][]byte{{0x01, 0x02}},
		},
		{
			desc:        "content type with parameter",
			body:        "\x01",
			contentType: "Application/Vnd.3gpp.SMS; charset=binary",
			expected:    [][]byte{{0x01}},
		},
		{
			desc:        "multipart with base64 part",
			body:        base64Body,
			contentType: `multipart/related; type="application/vnd.3gpp.sms"; boundary=b1`,
			expected:    [][]byte{{0x00, 0x01}, []byte("xyz")},
		},
		{
			desc:        "empty body",
			body:        "",
			contentType: "application/vnd.3gpp.sms",
			expectedErr: ErrMalformedEnvelope,
		},
		{
			desc:        "other content type",
			body:        "hello",
			contentType: "text/plain",
			expectedErr: ErrUnsupportedContentType,
		},
		{
			desc:        "invalid content type",
			body:        "hello",
			contentType: "",
			expectedErr: ErrUnsupportedContentType,
		},
		{
			desc:        "multipart of other type",
			body:        base64Body,
			contentType: `multipart/related; type="application/json"; boundary=b1`,
			expectedErr: ErrUnsupportedContentType,
		},
		{
			desc:        "multipart without boundary",
			body:        base64Body,
			contentType: `multipart/related; type="application/vnd.3gpp.sms"`,
			expectedErr: ErrMalformedEnvelope,
		},
		{
			desc:        "multipart with foreign part",
			body:        foreignPartBody,
			contentType: `multipart/related; type="application/vnd.3gpp.sms"; boundary=b1`,
			expectedErr: ErrUnsupportedContentType,
		},
		{
			desc:        "multipart with empty part",
			body:        emptyPartBody,
			contentType: `multipart/related; type="application/vnd.3gpp.sms"; boundary=b1`,
			expectedErr: ErrMalformedEnvelope,
		},
		{
			desc:        "multipart with wrong boundary",
			body:        base64Body,
			contentType: `multipart/related; type="application/vnd.3gpp.sms"; boundary=b2`,
			expectedErr: ErrMalformedEnvelope,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := Unwrap([]byte(tc.body), tc.contentType)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, actual)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}
