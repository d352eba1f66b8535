package avatars

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      bool

	putErr      error
	putName     string
	putType     string
	putContents []byte

	getRC  io.ReadCloser
	getErr error

	removeErr error
	removed   []string

	statInfo minioLib.ObjectInfo
	statErr  error

	listed []minioLib.ObjectInfo
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = true
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, name string, r io.Reader, _ int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if f.putErr != nil {
		return minioLib.UploadInfo{}, f.putErr
	}
	f.putName, f.putType = name, opts.ContentType
	f.putContents, _ = io.ReadAll(r)
	return minioLib.UploadInfo{Key: name}, nil
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, _ string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, name string, _ minioLib.RemoveObjectOptions) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, name)
	return nil
}
func (f *fakeMinio) StatObject(_ context.Context, _ string, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return f.statInfo, f.statErr
}
func (f *fakeMinio) ListObjects(_ context.Context, _ string, _ minioLib.ListObjectsOptions) <-chan minioLib.ObjectInfo {
	ch := make(chan minioLib.ObjectInfo, len(f.listed))
	for _, info := range f.listed {
		ch <- info
	}
	close(ch)
	return ch
}

var errNoSuchKey = minioLib.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}

func TestNewMinioStore_Bucket(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true}
		s, err := newMinioStoreWithAPI(ctx, api, "b")
		require.NoError(t, err)
		assert.Equal(t, "b", s.bucket)
		assert.False(t, api.madeBucket)
	})

	t.Run("created", func(t *testing.T) {
		api := &fakeMinio{}
		_, err := newMinioStoreWithAPI(ctx, api, "b")
		require.NoError(t, err)
		assert.True(t, api.madeBucket)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := newMinioStoreWithAPI(ctx, &fakeMinio{bucketExistsErr: errors.New("boom")}, "b")
		assert.ErrorContains(t, err, "failed to ensure bucket exists")

		_, err = newMinioStoreWithAPI(ctx, &fakeMinio{makeBucketErr: errors.New("fail")}, "b")
		assert.ErrorContains(t, err, "failed to ensure bucket exists")
	})
}

func TestMinioStore_Save(t *testing.T) {
	ctx := context.Background()
	name := uuid.NewString() + ".png"

	api := &fakeMinio{}
	s := &MinioStore{api: api, bucket: "b"}

	require.NoError(t, s.Save(ctx, name, bytes.NewReader([]byte("data")), 4, "image/png"))
	assert.Equal(t, name, api.putName)
	assert.Equal(t, "image/png", api.putType)
	assert.Equal(t, []byte("data"), api.putContents)

	assert.Error(t, s.Save(ctx, "../x.png", bytes.NewReader(nil), 0, "image/png"))

	api.putErr = errors.New("put-fail")
	assert.ErrorContains(t, s.Save(ctx, name, bytes.NewReader(nil), 0, "image/png"), "failed to upload object")
}

func TestMinioStore_Open(t *testing.T) {
	ctx := context.Background()
	name := uuid.NewString() + ".jpg"

	t.Run("success", func(t *testing.T) {
		api := &fakeMinio{
			statInfo: minioLib.ObjectInfo{Key: name, Size: 3},
			getRC:    io.NopCloser(bytes.NewReader([]byte("abc"))),
		}
		s := &MinioStore{api: api, bucket: "b"}

		rc, obj, err := s.Open(ctx, name)
		require.NoError(t, err)
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "abc", string(data))
		assert.Equal(t, int64(3), obj.Size)
		assert.Equal(t, "image/jpeg", obj.ContentType)
	})

	t.Run("not found", func(t *testing.T) {
		s := &MinioStore{api: &fakeMinio{statErr: errNoSuchKey}, bucket: "b"}
		_, _, err := s.Open(ctx, name)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("stat error", func(t *testing.T) {
		s := &MinioStore{api: &fakeMinio{statErr: errors.New("down")}, bucket: "b"}
		_, _, err := s.Open(ctx, name)
		assert.ErrorContains(t, err, "failed to stat object")
	})
}

func TestMinioStore_Delete(t *testing.T) {
	ctx := context.Background()

	api := &fakeMinio{}
	s := &MinioStore{api: api, bucket: "b"}
	require.NoError(t, s.Delete(ctx, "k.png"))
	assert.Equal(t, []string{"k.png"}, api.removed)

	api.removeErr = errNoSuchKey
	assert.NoError(t, s.Delete(ctx, "k.png"))

	api.removeErr = errors.New("fail")
	assert.ErrorContains(t, s.Delete(ctx, "k.png"), "failed to delete object")
}

func TestMinioStore_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	api := &fakeMinio{listed: []minioLib.ObjectInfo{
		{Key: "a.png", Size: 1, LastModified: now},
		{Key: "b.gif", Size: 2, LastModified: now},
	}}
	s := &MinioStore{api: api, bucket: "b"}

	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "image/gif", objects[1].ContentType)

	api.listed = []minioLib.ObjectInfo{{Err: errors.New("denied")}}
	_, err = s.List(ctx)
	assert.ErrorContains(t, err, "failed to list objects")
}
