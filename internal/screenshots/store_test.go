package screenshots

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var png = []byte("\x89PNG\r\n\x1a\nfake")

func TestLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	loc, err := store.Save(context.Background(), "greenhouse-1.png", png)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "greenhouse-1.png"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, png, data)
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"lever-abc.png", false},
		{"../escape.png", true},
		{"nested/shot.png", true},
		{"..", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cleanName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type fakeS3 struct {
	s3iface.S3API
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Save(t *testing.T) {
	client := &fakeS3{}
	store := NewS3StoreWithClient(client, S3Config{Bucket: "atlas-shots", Region: "us-east-1", Prefix: "/applies/"})

	loc, err := store.Save(context.Background(), "lever-1.png", png)
	require.NoError(t, err)

	assert.Equal(t, "https://atlas-shots.s3.us-east-1.amazonaws.com/applies/lever-1.png", loc)
	require.Len(t, client.inputs, 1)
	assert.Equal(t, "atlas-shots", aws.StringValue(client.inputs[0].Bucket))
	assert.Equal(t, "applies/lever-1.png", aws.StringValue(client.inputs[0].Key))
	assert.Equal(t, "image/png", aws.StringValue(client.inputs[0].ContentType))
	assert.Equal(t, png, client.bodies[0])
}

func TestS3Store_Errors(t *testing.T) {
	client := &fakeS3{err: errors.New("AccessDenied")}
	store := NewS3StoreWithClient(client, S3Config{Bucket: "b", Region: "r"})

	_, err := store.Save(context.Background(), "x.png", png)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")

	_, err = store.Save(context.Background(), "../x.png", png)
	assert.Error(t, err)

	_, err = NewS3Store(S3Config{Bucket: "b"})
	assert.Error(t, err)
}
