package mailscan_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/mailscan"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := mailscan.Errorf(mailscan.ENOCONTENT, "no body on %q", "inbox")

	assert.Equal(t, mailscan.ENOCONTENT, mailscan.ErrorCode(err))
	assert.Equal(t, "no body on \"inbox\"", mailscan.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("scan: %w", mailscan.Errorf(mailscan.EUNAVAILABLE, "connection refused"))

	assert.Equal(t, mailscan.EUNAVAILABLE, mailscan.ErrorCode(err))
	assert.Equal(t, "connection refused", mailscan.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, mailscan.EINTERNAL, mailscan.ErrorCode(err))
	assert.Equal(t, "Internal error", mailscan.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, mailscan.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, mailscan.ErrorMessage(nil))
}
