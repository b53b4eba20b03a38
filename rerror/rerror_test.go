package rerror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func Test_ResourceExhausted_CarriesCode(t *testing.T) {
	err := ResourceExhausted("need %d more bytes", 4)
	assert.Equal(t, codes.ResourceExhausted, Code(err))
	assert.True(t, Is(err, codes.ResourceExhausted))
	assert.Contains(t, err.Error(), "need 4 more bytes")
}

func Test_Wrap_PreservesCode(t *testing.T) {
	err := OutOfRange("seek past end")
	wrapped := Wrap(err, "reading chunk %d", 3)
	assert.Equal(t, codes.OutOfRange, Code(wrapped))
	assert.Contains(t, wrapped.Error(), "reading chunk 3")
	assert.Contains(t, wrapped.Error(), "seek past end")
}

func Test_Wrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "whatever"))
}

func Test_IO_WrapsUnderlyingError(t *testing.T) {
	err := IO(assert.AnError)
	assert.Equal(t, codes.Unavailable, Code(err))
}

func Test_Code_NilIsOK(t *testing.T) {
	assert.Equal(t, codes.OK, Code(nil))
}
