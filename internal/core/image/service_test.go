package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"recipe-lens/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func assertJPEG(t *testing.T, encoded string) {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestProcessImageInputs(t *testing.T) {
	pngBytes := samplePNG(t)
	b64 := base64.StdEncoding.EncodeToString(pngBytes)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	svc := NewService(1 << 20)
	inputs := map[string]string{
		"data uri":   "data:image/png;base64," + b64,
		"raw base64": b64,
		"url":        srv.URL + "/fridge.png",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			out, err := svc.ProcessImage(context.Background(), input)
			require.NoError(t, err)
			assertJPEG(t, out)
		})
	}
}

func TestProcessImageRejects(t *testing.T) {
	svc := NewService(1 << 20)

	tests := []struct {
		name  string
		input string
		want  *common.CustomError
	}{
		{"empty", "", common.ErrInvalidImageFormat},
		{"not base64", "%%%", common.ErrInvalidImageFormat},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello world")), common.ErrInvalidImageFormat},
		{"malformed data uri", "data:image/png;base64", common.ErrInvalidImageFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ProcessImage(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestProcessImageSizeLimit(t *testing.T) {
	svc := NewService(10)
	_, err := svc.ProcessImage(context.Background(), base64.StdEncoding.EncodeToString(samplePNG(t)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidImageSize))
}

// withDimensions 改寫 PNG 的 IHDR 寬高並重算 CRC
func withDimensions(t *testing.T, pngBytes []byte, width, height uint32) []byte {
	t.Helper()
	out := append([]byte(nil), pngBytes...)
	// 8 位元組簽章 + 4 位元組長度 + "IHDR"
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestProcessImageDimensionLimit(t *testing.T) {
	tests := []struct {
		name      string
		maxPixels int64
		data      func(t *testing.T) []byte
		wantErr   *common.CustomError
	}{
		{
			name:      "header declares huge canvas",
			maxPixels: MaxPixels,
			data: func(t *testing.T) []byte {
				return withDimensions(t, samplePNG(t), 100000, 100000)
			},
			wantErr: common.ErrInvalidImageSize,
		},
		{
			name:      "small image over configured pixels",
			maxPixels: 15,
			data:      samplePNG,
			wantErr:   common.ErrInvalidImageSize,
		},
		{
			name:      "small image at configured pixels",
			maxPixels: 16,
			data:      samplePNG,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(1 << 20)
			svc.maxPixels = tt.maxPixels

			out, err := svc.ProcessImage(context.Background(), base64.StdEncoding.EncodeToString(tt.data(t)))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assertJPEG(t, out)
		})
	}
}

func TestProcessImageDownloadLimit(t *testing.T) {
	const (
		limit = 1 << 20
		total = 64 << 20
		chunk = 32 << 10
	)

	tests := []struct {
		name          string
		declareLength bool
	}{
		{name: "streamed without length", declareLength: false},
		{name: "declared length over limit", declareLength: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var served int64
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				if tt.declareLength {
					w.Header().Set("Content-Length", strconv.Itoa(total))
				}
				buf := make([]byte, chunk)
				flusher, _ := w.(http.Flusher)
				for written := 0; written < total; written += chunk {
					n, err := w.Write(buf)
					atomic.AddInt64(&served, int64(n))
					if err != nil {
						return
					}
					if flusher != nil {
						flusher.Flush()
					}
				}
			}))

			svc := NewService(limit)
			_, err := svc.ProcessImage(context.Background(), srv.URL+"/huge.png")
			srv.Close()

			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidImageSize))
			assert.Less(t, atomic.LoadInt64(&served), int64(total/2))
		})
	}
}

func TestProcessImageOversizedBase64(t *testing.T) {
	svc := NewService(16)
	payload := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xff}, 64))

	for _, input := range []string{payload, "data:image/png;base64," + payload} {
		_, err := svc.ProcessImage(context.Background(), input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrInvalidImageSize))
	}
}
