package image

import (
	"bytes"
	"encoding/base64"
	stdimage "image"
	"image/png"
	"testing"

	"grocery-manager/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func TestDecodeReceiptPlainBase64(t *testing.T) {
	raw := encodeTestPNG(t)
	svc := NewService(0)

	decoded, contentType, err := svc.DecodeReceipt(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
	assert.Equal(t, "image/png", contentType)
}

func TestDecodeReceiptDataURL(t *testing.T) {
	raw := encodeTestPNG(t)
	svc := NewService(0)

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	decoded, contentType, err := svc.DecodeReceipt(dataURL)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
	assert.Equal(t, "image/png", contentType)
}

func TestDecodeReceiptEmpty(t *testing.T) {
	svc := NewService(0)

	_, _, err := svc.DecodeReceipt("   ")
	assert.ErrorIs(t, err, common.ErrNoImageProvided)
}

func TestDecodeReceiptInvalidBase64(t *testing.T) {
	svc := NewService(0)

	_, _, err := svc.DecodeReceipt("!!!not base64!!!")
	require.Error(t, err)
	assert.Equal(t, 400, common.StatusOf(err))
}

func TestDecodeReceiptNotAnImage(t *testing.T) {
	svc := NewService(0)

	_, _, err := svc.DecodeReceipt(base64.StdEncoding.EncodeToString([]byte("plain text")))
	require.Error(t, err)
	assert.Equal(t, 400, common.StatusOf(err))
}

func TestDecodeReceiptSizeLimit(t *testing.T) {
	raw := encodeTestPNG(t)
	svc := NewService(int64(len(raw) - 1))

	_, _, err := svc.DecodeReceipt(base64.StdEncoding.EncodeToString(raw))
	require.Error(t, err)
	assert.Equal(t, 400, common.StatusOf(err))
}

func TestToBase64RoundTrip(t *testing.T) {
	svc := NewService(0)
	raw := []byte{0x01, 0x02, 0x03}

	decoded, err := base64.StdEncoding.DecodeString(svc.ToBase64(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}
