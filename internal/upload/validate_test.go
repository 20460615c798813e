package upload

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sized(name, contentType string, size int64) File {
	return File{Name: name, ContentType: contentType, Size: size}
}

func TestValidate(t *testing.T) {
	t.Run("ValidPNG", func(t *testing.T) {
		res := Validate(sized("a.png", "image/png", 500*KiB), ProductImage)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("ExactlyMaxSizePasses", func(t *testing.T) {
		res := Validate(sized("x.jpg", "image/jpeg", 2*MiB), ProductImage)
		assert.True(t, res.Valid)
	})

	t.Run("OneByteOverFails", func(t *testing.T) {
		res := Validate(sized("x.jpg", "image/jpeg", 2*MiB+1), ProductImage)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "exceeds")
	})

	t.Run("AvatarIsStricter", func(t *testing.T) {
		res := Validate(sized("me.webp", "image/webp", 1*MiB+1), Avatar)
		assert.False(t, res.Valid)

		res = Validate(sized("me.webp", "image/webp", 1*MiB), Avatar)
		assert.True(t, res.Valid)
	})

	t.Run("UppercaseExtension", func(t *testing.T) {
		res := Validate(sized("PHOTO.JPEG", "image/jpeg", 10), ProductImage)
		assert.True(t, res.Valid)
	})

	t.Run("ErrorOrder", func(t *testing.T) {
		res := Validate(sized("b.gif", "image/gif", 3*MiB), ProductImage)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 3)
		assert.Contains(t, res.Errors[0], "disallowed type")
		assert.Contains(t, res.Errors[1], "disallowed extension")
		assert.Contains(t, res.Errors[2], "exceeds")
	})

	t.Run("MissingExtension", func(t *testing.T) {
		res := Validate(sized("README", "image/png", 10), ProductImage)
		assert.Equal(t, []string{"missing file extension"}, res.Errors)
	})
}

func TestValidateAll(t *testing.T) {
	files := []File{
		sized("a.png", "image/png", 500*KiB),
		sized("b.gif", "image/gif", 100*KiB),
	}

	results := ValidateAll(files, ProductImage)

	assert.True(t, results["a.png"].Valid)
	assert.False(t, results["b.gif"].Valid)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 Bytes", FormatSize(0))
	assert.Equal(t, "512 Bytes", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2 MB", FormatSize(2*MiB))
}

func TestFileSources(t *testing.T) {
	t.Run("FromBytes", func(t *testing.T) {
		f := FromBytes("a.png", "image/png", []byte("png-bytes"))
		assert.Equal(t, int64(9), f.Size)

		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("FromPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shirt.png")
		require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))

		f, err := FromPath(path)
		require.NoError(t, err)
		assert.Equal(t, "shirt.png", f.Name)
		assert.Equal(t, "image/png", f.ContentType)
		assert.Equal(t, int64(12), f.Size)
	})

	t.Run("FromPathSniffsWithoutExtension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "photo")
		require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))

		f, err := FromPath(path)
		require.NoError(t, err)
		assert.Equal(t, "image/png", f.ContentType)
	})

	t.Run("FromPathMissing", func(t *testing.T) {
		_, err := FromPath(filepath.Join(t.TempDir(), "nope.png"))
		assert.Error(t, err)
	})

	t.Run("ZeroValueHasNoContent", func(t *testing.T) {
		_, err := File{Name: "x.png"}.Open()
		assert.Error(t, err)
	})
}
