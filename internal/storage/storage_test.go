package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestValidateName(t *testing.T) {
	for _, name := range []string{"a.png", "0b1c-uuid.jpeg"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.png", `a\b.png`, ".hidden"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "images")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "x.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png"))

	obj, err := store.Open(ctx, "x.png")
	require.NoError(t, err)
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, obj.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, body)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngHeader)), obj.Size)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")

	_, err = store.Open(ctx, "../x.png")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "x.png"))
	assert.ErrorIs(t, store.Delete(ctx, "x.png"), ErrNotFound)

	_, err = store.Open(ctx, "x.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := new(mockS3)
	store := newS3Store(client, "shop", "product_images")

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "shop" &&
			aws.ToString(in.Key) == "product_images/a.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToInt64(in.ContentLength) == 3
	})).Return(nil).Once()
	require.NoError(t, store.Save(ctx, "a.png", bytes.NewReader([]byte("abc")), 3, "image/png"))

	client.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "product_images/a.png"
	})).Return(&s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader([]byte("abc"))),
		ContentType:   aws.String("image/png"),
		ContentLength: aws.Int64(3),
	}, nil).Once()
	obj, err := store.Open(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(3), obj.Size)

	client.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "product_images/missing.png"
	})).Return(nil, &types.NoSuchKey{}).Once()
	_, err = store.Open(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	client.On("DeleteObject", ctx, mock.Anything).Return(nil).Once()
	require.NoError(t, store.Delete(ctx, "a.png"))

	assert.ErrorIs(t, store.Save(ctx, "../a.png", bytes.NewReader(nil), 0, ""), ErrInvalidName)
	client.AssertExpectations(t)
}
