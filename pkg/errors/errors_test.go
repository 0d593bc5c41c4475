package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsContextAndChain(t *testing.T) {
	base := NewNotFoundError("dicom folder").WithContext("path", "/data/p1")
	wrapped := Wrap(base, ErrorTypeInternal, "read series")

	require.True(t, Is(wrapped, ErrorTypeInternal))
	require.Equal(t, "/data/p1", wrapped.Context["path"])

	var inner *AppError
	require.True(t, errors.As(wrapped.Unwrap(), &inner))
	require.Equal(t, ErrorTypeNotFound, inner.Type)
}

func TestWrapNil(t *testing.T) {
	require.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestTypeOf(t *testing.T) {
	require.Equal(t, ErrorTypeDecode, TypeOf(fmt.Errorf("frame 2: %w", NewDecodeError("bad png"))))
	require.Equal(t, ErrorTypeInternal, TypeOf(errors.New("plain")))
	require.Equal(t, ErrorTypeModelNotLoaded, TypeOf(ErrModelNotLoaded))
}

func TestAmbiguousSegmentationMessage(t *testing.T) {
	err := NewAmbiguousSegmentationError(3)
	require.Equal(t, "[ambiguous_segmentation] expected at most 2 vessel cross-sections, found 3", err.Error())
	require.Equal(t, 3, err.Context["shapes"])
}
