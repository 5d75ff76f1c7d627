package upload

import (
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicore/records-api/pkg/errors"
)

func header(name, contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{
		Filename: name,
		Header:   h,
		Size:     size,
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(1 << 20)

	t.Run("allowed type passes", func(t *testing.T) {
		assert.NoError(t, v.Validate(header("scan.pdf", "application/pdf", 1024)))
	})

	t.Run("content type parameters ignored", func(t *testing.T) {
		assert.NoError(t, v.Validate(header("note.txt", "text/plain; charset=utf-8", 10)))
	})

	t.Run("disallowed type rejected", func(t *testing.T) {
		err := v.Validate(header("app.exe", "application/x-msdownload", 10))
		appErr, ok := errors.AsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, errors.KindValidation, appErr.Kind)
	})

	t.Run("oversized file rejected with 413", func(t *testing.T) {
		err := v.Validate(header("video.mp4", "video/mp4", 2<<20))
		appErr, ok := errors.AsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, errors.KindTooLarge, appErr.Kind)
		assert.Equal(t, 413, appErr.StatusCode())
	})
}

func TestStoredName(t *testing.T) {
	a := StoredName("photo.JPG")
	b := StoredName("photo.JPG")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.True(t, strings.HasSuffix(b, ".jpg"))
}
