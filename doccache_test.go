package doccache_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/doccache"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := doccache.Errorf(doccache.ENOTFOUND, "document %q not found", "test")

	assert.Equal(t, doccache.ENOTFOUND, doccache.ErrorCode(err))
	assert.Equal(t, "document \"test\" not found", doccache.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, doccache.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, doccache.EINTERNAL, doccache.ErrorCode(errors.New("boom")))
}

func TestWrapError_PreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := doccache.WrapError(cause, doccache.EINTERNAL, "failed to save %q", "test")

	assert.Equal(t, doccache.EINTERNAL, doccache.ErrorCode(err))
	assert.ErrorIs(t, err, cause)
}

func TestDocument_Validate(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{}
	err := doc.Validate()
	assert.Equal(t, doccache.EINVALID, doccache.ErrorCode(err))

	doc.Name = "Test Doc"
	assert.NoError(t, doc.Validate())
}

func TestDocument_CurrentContent(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{}
	assert.Empty(t, doc.CurrentContent())
	assert.Empty(t, doc.CurrentVersion())

	doc.Versions = []doccache.Version{
		{Version: "v2", Content: "newer"},
		{Version: "v1", Content: "older"},
	}
	assert.Equal(t, "newer", doc.CurrentContent())
	assert.Equal(t, "v2", doc.CurrentVersion())
}
