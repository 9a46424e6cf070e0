package cache

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vetverify/internal/apperr"
)

// backendContract exercises the behavior every Backend must share.
func backendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "texasVets.json")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	loc, err := b.Put(ctx, "texasVets.json", []byte(`{"v":1}`))
	require.NoError(t, err)
	assert.Equal(t, b.Location("texasVets.json"), loc)

	_, err = b.Put(ctx, "texasVets.json", []byte(`{"v":2}`))
	require.NoError(t, err)
	_, err = b.Put(ctx, "ohioVets.json", []byte(`{}`))
	require.NoError(t, err)

	data, err := b.Get(ctx, "texasVets.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(data))

	keys, err := b.List(ctx, "texas")
	require.NoError(t, err)
	assert.Equal(t, []string{"texasVets.json"}, keys)

	keys, err = b.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ohioVets.json", "texasVets.json"}, keys)

	keys, err = b.List(ctx, "vermont")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileBackend(t *testing.T) {
	b, err := NewFileBackend(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	backendContract(t, b)
}

func TestFileBackend_IgnoresTempFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, tempPrefix+"texasVets.json-1"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "texasVets.json.d"), 0o750))

	keys, err := b.List(context.Background(), "texas")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileBackend_RejectsPathKeys(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	_, err = b.Put(context.Background(), "../escape.json", []byte("x"))
	assert.Error(t, err)
	_, err = b.Get(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	b, err := NewSQLiteBackend(context.Background(), filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	backendContract(t, b)
}

func TestSQLiteBackend_ListEscapesWildcards(t *testing.T) {
	b, err := NewSQLiteBackend(context.Background(), filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	ctx := context.Background()

	_, err = b.Put(ctx, "new_yorkVets.json", []byte(`{}`))
	require.NoError(t, err)
	_, err = b.Put(ctx, "newXyorkVets.json", []byte(`{}`))
	require.NoError(t, err)

	keys, err := b.List(ctx, "new_")
	require.NoError(t, err)
	assert.Equal(t, []string{"new_yorkVets.json"}, keys)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}

// fakeS3 is an in-memory s3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func TestS3Backend(t *testing.T) {
	fake := newFakeS3()
	b := newS3Backend(fake, "vet-blobs", "prod/")
	backendContract(t, b)

	assert.Contains(t, fake.objects, "prod/texasVets.json")
	assert.Equal(t, "s3://vet-blobs/prod/texasVets.json", b.Location("texasVets.json"))
}

func TestNewS3Backend_RequiresBucket(t *testing.T) {
	_, err := NewS3Backend(context.Background(), S3Options{Region: "us-east-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, closeFn, err := OpenBackend(ctx, BackendOptions{Kind: KindFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)
	assert.NoError(t, closeFn())

	b, closeFn, err = OpenBackend(ctx, BackendOptions{Kind: KindSQLite, SQLitePath: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	assert.NoError(t, closeFn())

	_, _, err = OpenBackend(ctx, BackendOptions{Kind: KindSQLite})
	assert.Error(t, err)

	_, _, err = OpenBackend(ctx, BackendOptions{Kind: KindPostgres})
	assert.Error(t, err)

	_, _, err = OpenBackend(ctx, BackendOptions{Kind: "gcs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "gcs"`)
}
