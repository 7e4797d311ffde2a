package com

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_ReadInChunks(t *testing.T) {
	tt := []struct {
		desc     string
		in       string
		bufLen   int
		expected []string
	}{
		{"short", "+CMT: ,23", 16, []string{"+CMT: ,23"}},
		{"exact", "OK\r\n", 4, []string{"OK\r\n"}},
		{"long", "+CMGS: 12", 4, []string{"+CMG", "S: 1", "2"}},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			rw := NewInMemory()
			rw.PrepareRead([]byte(tc.in))
			buf := make([]byte, tc.bufLen)

			for _, expected := range tc.expected {
				n, err := rw.Read(buf)

				require.NoError(t, err)
				assert.Equal(t, expected, string(buf[0:n]))
			}
			assert.True(t, rw.IsReadEmpty())
		})
	}
}

func TestInMemory_ReadUntilClosed(t *testing.T) {
	rw := NewInMemory()

	go func() {
		time.Sleep(2 * inMemoryPollInterval)
		rw.Close()
	}()

	buf := make([]byte, 10)
	n, err := rw.Read(buf)

	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, n)
	rw.WaitUntilClosed()
}

func TestInMemory_CloseTwice(t *testing.T) {
	rw := NewInMemory()

	assert.NoError(t, rw.Close())
	assert.NoError(t, rw.Close())

	_, err := rw.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err)
}

func TestInMemory_CloseWhenEmpty(t *testing.T) {
	t.Run("after the prepared data was read", func(t *testing.T) {
		rw := NewInMemory()
		rw.CloseWhenEmpty(true)
		rw.PrepareRead([]byte("OK\r\n"))
		buf := make([]byte, 10)

		n, err := rw.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "OK\r\n", string(buf[0:n]))

		_, err = rw.Read(buf)
		assert.Equal(t, io.EOF, err)
	})

	t.Run("when the read buffer is cleared", func(t *testing.T) {
		rw := NewInMemory()
		rw.CloseWhenEmpty(true)
		rw.PrepareRead([]byte("pending"))

		rw.ClearRead()

		assert.True(t, rw.IsReadEmpty())
		_, err := rw.Read(make([]byte, 10))
		assert.Equal(t, io.EOF, err)
	})
}

func TestInMemory_Responder(t *testing.T) {
	rw := NewInMemory()
	rw.SetResponder(func(written []byte) []byte {
		return append(append([]byte("echo "), written...), '\n')
	})

	_, err := rw.Write([]byte("AT"))
	require.NoError(t, err)
	_, err = rw.Write([]byte("AT+CSQ"))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := rw.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "echo AT\necho AT+CSQ\n", string(buf[0:n]))
}

func TestInMemory_ReadLater(t *testing.T) {
	rw := NewInMemory()

	go func() {
		time.Sleep(2 * inMemoryPollInterval)
		rw.PrepareRead([]byte("hello"))
	}()

	buf := make([]byte, 10)
	n, err := rw.Read(buf)

	assert.NoError(t, err)
	assert.Equal(t, "hello", string(buf[0:n]))
}

func TestInMemory_Write(t *testing.T) {
	rw := NewInMemory()

	n, err := rw.Write([]byte("hello"))

	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	snapshot := rw.Written()
	snapshot[0] = 'j'
	assert.Equal(t, "hello", string(rw.Written()))

	rw.ClearWrite()
	assert.Equal(t, "", string(rw.Written()))
}
