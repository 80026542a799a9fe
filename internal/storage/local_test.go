package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalPutUsesBusinessKeyLayout(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "/images/")

	res, err := l.Put(context.Background(), strings.NewReader("fake png bytes"), PutInput{
		BusinessID:  "biz-42",
		Filename:    "Storefront.PNG",
		ContentType: "image/png",
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(res.Key, "businesses/biz-42/"), "key %q", res.Key)
	require.True(t, strings.HasSuffix(res.Key, ".png"), "key %q", res.Key)
	require.Equal(t, "/images/"+res.Key, res.URL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	require.Equal(t, "fake png bytes", string(data))
}

func TestLocalPutDropsUnknownExtension(t *testing.T) {
	l := NewLocal(t.TempDir(), "/images")

	res, err := l.Put(context.Background(), strings.NewReader("x"), PutInput{
		BusinessID: "biz-1",
		Filename:   "payload.exe",
	})
	require.NoError(t, err)
	require.False(t, strings.Contains(res.Key, "."), "key %q", res.Key)
}

func TestLocalDeleteRemovesStoredImage(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "/images")

	res, err := l.Put(context.Background(), strings.NewReader("x"), PutInput{
		BusinessID: "biz-1",
		Filename:   "a.jpg",
	})
	require.NoError(t, err)

	require.NoError(t, l.Delete(context.Background(), res.Key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(res.Key)))
	require.True(t, os.IsNotExist(err))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	l := NewLocal(t.TempDir(), "/images")

	for _, key := range []string{"../outside.png", "/etc/passwd", "businesses/../../x"} {
		require.Error(t, l.Delete(context.Background(), key), "key %q", key)
	}
}
