package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/files")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "invoice_1_123.pdf", "application/pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/files/invoice_1_123.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "invoice_1_123.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), data)
}

func TestLocalStoreOverwrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/files")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Put(ctx, "a.pdf", "application/pdf", []byte("first"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "a.pdf", "application/pdf", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}
