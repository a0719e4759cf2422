package pricelist

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/de-tools/pricelist-atlas/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKey_Path(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
		wantErr  bool
	}{
		{name: "catalog", key: CatalogKey(), expected: "index.json"},
		{name: "family file", key: FileKey("verifiedpermissions", "index-version"), expected: "pricelists/verifiedpermissions/index-version.json"},
		{name: "region file", key: FileKey("verifiedpermissions", "region-us-east-1"), expected: "pricelists/verifiedpermissions/region-us-east-1.json"},
		{name: "traversal", key: FileKey("verifiedpermissions", "../secrets"), wantErr: true},
		{name: "missing family", key: FileKey("", "index-version"), wantErr: true},
		{name: "upper case", key: FileKey("VerifiedPermissions", "index"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.key.Path()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestFSStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewFSStore(root)
	key := FileKey("verifiedpermissions", "index-current-version")

	_, err := store.Read(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Write(ctx, key, []byte(`{"products":{}}`)))

	data, err := store.Read(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":{}}`, string(data))

	onDisk, err := os.ReadFile(filepath.Join(root, "pricelists", "verifiedpermissions", "index-current-version.json"))
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	entries, err := os.ReadDir(filepath.Join(root, "pricelists", "verifiedpermissions"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFSStore_RejectsInvalidKey(t *testing.T) {
	store := NewFSStore(t.TempDir())

	_, err := store.Read(context.Background(), FileKey("..", "index"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = store.Write(context.Background(), FileKey("a/b", "index"), []byte("{}"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *mockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func TestS3Store_Read(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*mockObjectAPI)
		expected  string
		expectErr error
	}{
		{
			name: "object found",
			setupMock: func(m *mockObjectAPI) {
				m.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
					return aws.ToString(in.Bucket) == "docs" &&
						aws.ToString(in.Key) == "mirror/pricelists/verifiedpermissions/index-version.json"
				})).Return(&s3.GetObjectOutput{
					Body: io.NopCloser(bytes.NewReader([]byte(`{"versions":{}}`))),
				}, nil)
			},
			expected: `{"versions":{}}`,
		},
		{
			name: "missing object",
			setupMock: func(m *mockObjectAPI) {
				m.On("GetObject", mock.Anything, mock.Anything).
					Return(nil, &types.NoSuchKey{})
			},
			expectErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockObjectAPI)
			tt.setupMock(client)
			store := NewS3Store(client, "docs", "mirror")

			data, err := store.Read(context.Background(), FileKey("verifiedpermissions", "index-version"))
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, string(data))
			}
			client.AssertExpectations(t)
		})
	}
}

func TestS3Store_Write(t *testing.T) {
	client := new(mockObjectAPI)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "docs" && aws.ToString(in.Key) == "index.json"
	})).Return(&s3.PutObjectOutput{}, nil).Once()
	client.On("PutObject", mock.Anything, mock.Anything).
		Return(nil, errors.New("access denied")).Once()

	store := NewS3Store(client, "docs", "")

	require.NoError(t, store.Write(context.Background(), CatalogKey(), []byte(`{}`)))
	assert.Error(t, store.Write(context.Background(), FileKey("verifiedpermissions", "index-version"), []byte(`{}`)))
	client.AssertExpectations(t)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register("", FSFactory))
	assert.Error(t, r.Register("fs", nil))
	require.NoError(t, r.Register("fs", FSFactory))
	assert.Error(t, r.Register("fs", FSFactory))

	store, err := r.Create(context.Background(), config.Store{Backend: "fs", Root: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = r.Create(context.Background(), config.Store{Backend: "gcs"})
	assert.Error(t, err)

	_, err = r.Create(context.Background(), config.Store{Backend: "fs"})
	assert.Error(t, err, "fs backend needs a root")

	assert.Equal(t, []string{"fs", "s3"}, DefaultRegistry().ListBackends())
}
