package xerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	underlying := errors.New("unexpected byte")
	err := NewFormatError("parse_doc", 4096, underlying)

	require.ErrorIs(t, err, underlying)
	require.Contains(t, err.Error(), "byte offset 4096")
	require.Contains(t, err.Error(), "parse_doc")
}

func TestIOError(t *testing.T) {
	underlying := errors.New("no such file")
	err := NewIOError("open", "/tmp/index/000.vbyte", underlying)

	require.ErrorIs(t, err, underlying)
	require.Contains(t, err.Error(), "/tmp/index/000.vbyte")
}

func TestLookupMiss(t *testing.T) {
	err := NewLookupMiss("zzyzx")
	require.Contains(t, err.Error(), "zzyzx")
}

func TestEmptyQueryError(t *testing.T) {
	err := NewEmptyQueryError("")
	require.Contains(t, err.Error(), "no resolvable terms")
}

func TestMultiErrorFiltersNil(t *testing.T) {
	err := NewMultiError([]error{nil, errors.New("a"), nil, errors.New("b")})
	require.Len(t, err.Errors, 2)
	require.Contains(t, err.Error(), "2 errors")
}

func TestMultiErrorEmpty(t *testing.T) {
	err := NewMultiError(nil)
	require.Equal(t, "no errors", err.Error())
}
