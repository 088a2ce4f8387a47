package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return m.UploadWithContext(context.Background(), input, opts...)
}

func (m *MockUploader) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	bs, _ := io.ReadAll(input.Body)
	args := m.Called(aws.StringValue(input.Bucket), aws.StringValue(input.Key), string(bs))
	return &s3manager.UploadOutput{}, args.Error(0)
}

func TestRepository_Write(t *testing.T) {
	uploader := new(MockUploader)
	uploader.On("UploadWithContext", "exports", "arquivo/abc/catalog.json", `{"completed":true}`).Return(nil)

	r, err := New(
		WithBucket("exports"),
		WithPrefix("arquivo/abc"),
		WithUploader(uploader),
	)
	require.NoError(t, err)

	err = r.Write(context.Background(), "catalog.json", strings.NewReader(`{"completed":true}`))
	require.NoError(t, err)
	uploader.AssertExpectations(t)

	assert.Equal(t, "s3://exports/arquivo/abc/catalog.json", r.URI("catalog.json"))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(WithRegion("us-east-1"))
	assert.Error(t, err)
}
