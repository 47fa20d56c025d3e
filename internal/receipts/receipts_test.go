package receipts

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		max      int64
		wantMIME string
		wantErr  string
	}{
		{name: "pdf", data: pdfBytes, max: 1024, wantMIME: "application/pdf"},
		{name: "png", data: pngBytes, max: 1024, wantMIME: "image/png"},
		{name: "plain text", data: []byte("hello there"), max: 1024, wantErr: "not supported"},
		{name: "too large", data: pdfBytes, max: 10, wantErr: "at most 10 bytes"},
		{name: "empty", data: nil, max: 10, wantErr: "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Sniff(bytes.NewReader(tt.data), tt.max)
			if tt.wantErr != "" {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, f.MIME)
			assert.Equal(t, tt.data, f.Data)
		})
	}
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("3f2504e0-4f89-11d3-9a0c-0305e82c3301")
	assert.Equal(t, "3f/3f2504e0-4f89-11d3-9a0c-0305e82c3301_hotel_bill.pdf", objectKey(id, "hotel bill.PDF"))
	assert.Equal(t, "3f/3f2504e0-4f89-11d3-9a0c-0305e82c3301_passwd", objectKey(id, "../../etc/passwd"))
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, config.ReceiptsConfig{Backend: BackendLocal, Dir: t.TempDir()})
	require.NoError(t, err)

	key, err := store.Upload(ctx, uuid.New(), "taxi.pdf", bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "_taxi.pdf"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, pdfBytes, got)

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key), "deleting twice is fine")

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLocalStoreStaysInsideBase(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, store.basePath+"/etc/passwd", store.path("../../etc/passwd"))
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.ReceiptsConfig{Backend: "ftp"})
	assert.Error(t, err)
}
