package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"testing"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/files/dto"
	"github.com/Laisky/files-manager/internal/web/files/model"
	"github.com/Laisky/files-manager/library/storage"
)

// fakeFileDao keeps records in insertion order and lists them newest first,
// the same order the mongo dao returns.
type fakeFileDao struct {
	mu    sync.Mutex
	files []*model.File
}

func (d *fakeFileDao) CreateFile(ctx context.Context, file *model.File) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = append(d.files, file)
	return nil
}

func (d *fakeFileDao) GetFile(ctx context.Context, id, userID primitive.ObjectID) (*model.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.files {
		if f.ID == id && f.UserID == userID {
			return f, nil
		}
	}
	return nil, errors.WithStack(model.ErrNotFound)
}

func (d *fakeFileDao) GetFileByID(ctx context.Context, id primitive.ObjectID) (*model.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, errors.WithStack(model.ErrNotFound)
}

func (d *fakeFileDao) ListFiles(ctx context.Context,
	userID primitive.ObjectID, parentID string, page int64,
) ([]*model.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	matched := []*model.File{}
	for i := len(d.files) - 1; i >= 0; i-- {
		f := d.files[i]
		if f.UserID == userID && f.ParentID == parentID {
			matched = append(matched, f)
		}
	}

	const pageSize = 20
	start := page * pageSize
	if start >= int64(len(matched)) {
		return []*model.File{}, nil
	}
	end := min(start+pageSize, int64(len(matched)))
	return matched[start:end], nil
}

func (d *fakeFileDao) SetVisibility(ctx context.Context,
	id primitive.ObjectID, isPublic bool,
) (*model.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.files {
		if f.ID == id {
			f.IsPublic = isPublic
			return f, nil
		}
	}
	return nil, errors.WithStack(model.ErrNotFound)
}

func (d *fakeFileDao) CountFiles(ctx context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.files)), nil
}

type thumbnailJob struct {
	userID string
	fileID string
}

type fakeThumbQueue struct {
	mu       sync.Mutex
	jobs     []thumbnailJob
	failNext bool
}

func (q *fakeThumbQueue) AddThumbnailTask(ctx context.Context, userID, fileID string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failNext {
		q.failNext = false
		return "", errors.New("queue unreachable")
	}
	q.jobs = append(q.jobs, thumbnailJob{userID: userID, fileID: fileID})
	return "task-id", nil
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, data []byte) (string, error) {
	return "", errors.New("storage unreachable")
}

func (failingStore) Get(ctx context.Context, ref string) ([]byte, error) {
	return nil, errors.New("storage unreachable")
}

func newTestService(t *testing.T) (*Files, *fakeFileDao, *storage.FS, *fakeThumbQueue) {
	t.Helper()

	logger, err := glog.NewConsoleWithName("test", glog.LevelError)
	require.NoError(t, err)

	store, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)

	dao := &fakeFileDao{}
	queue := &fakeThumbQueue{}
	return New(logger, dao, store, queue), dao, store, queue
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestUploadFileRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, store, queue := newTestService(t)
	userID := primitive.NewObjectID()

	file, err := svc.Upload(ctx, userID, &dto.UploadRequest{
		Name: "a.txt",
		Type: "file",
		Data: b64("hello"),
	})
	require.NoError(t, err)
	require.Equal(t, model.RootFolderID, file.ParentID)
	require.False(t, file.IsPublic)
	require.NotEmpty(t, file.ContentRef)
	require.Empty(t, queue.jobs)

	content, err := store.Get(ctx, file.ContentRef)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), content)

	got, err := svc.Get(ctx, userID, file.GetID())
	require.NoError(t, err)
	require.Equal(t, file.Name, got.Name)
	require.Equal(t, file.Type, got.Type)
	require.Equal(t, file.ParentID, got.ParentID)

	// a different user cannot see the record at all
	_, err = svc.Get(ctx, primitive.NewObjectID(), file.GetID())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestUploadFolderHasNoContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	folder, err := svc.Upload(ctx, primitive.NewObjectID(), &dto.UploadRequest{
		Name: "images",
		Type: "folder",
	})
	require.NoError(t, err)
	require.Empty(t, folder.ContentRef)
}

func TestUploadValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, dao, _, _ := newTestService(t)
	userID := primitive.NewObjectID()

	tests := []struct {
		name string
		req  *dto.UploadRequest
		err  error
	}{
		{"missing name", &dto.UploadRequest{Type: "file", Data: b64("x")}, model.ErrMissingName},
		{"missing type", &dto.UploadRequest{Name: "a", Data: b64("x")}, model.ErrMissingType},
		{"unknown type", &dto.UploadRequest{Name: "a", Type: "video", Data: b64("x")}, model.ErrMissingType},
		{"missing data", &dto.UploadRequest{Name: "a", Type: "file"}, model.ErrMissingData},
		{"bad base64", &dto.UploadRequest{Name: "a", Type: "file", Data: "!!!"}, model.ErrMissingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, userID, tt.req)
			require.ErrorIs(t, err, tt.err)
		})
	}

	// no partial record was created by any failed upload
	cnt, err := dao.CountFiles(ctx)
	require.NoError(t, err)
	require.Zero(t, cnt)
}

func TestUploadParentChecks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, dao, _, _ := newTestService(t)
	userID := primitive.NewObjectID()

	folder, err := svc.Upload(ctx, userID, &dto.UploadRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)

	regular, err := svc.Upload(ctx, userID, &dto.UploadRequest{
		Name: "a.txt", Type: "file", Data: b64("x"),
	})
	require.NoError(t, err)

	// nested under an existing folder
	nested, err := svc.Upload(ctx, userID, &dto.UploadRequest{
		Name: "b.txt", Type: "file", Data: b64("y"),
		ParentID: dto.ParentID(folder.GetID()),
	})
	require.NoError(t, err)
	require.Equal(t, folder.GetID(), nested.ParentID)

	// nonexistent parent
	_, err = svc.Upload(ctx, userID, &dto.UploadRequest{
		Name: "c.txt", Type: "file", Data: b64("z"),
		ParentID: dto.ParentID(primitive.NewObjectID().Hex()),
	})
	require.ErrorIs(t, err, model.ErrParentNotFound)

	// parent is a regular file
	_, err = svc.Upload(ctx, userID, &dto.UploadRequest{
		Name: "d.txt", Type: "file", Data: b64("z"),
		ParentID: dto.ParentID(regular.GetID()),
	})
	require.ErrorIs(t, err, model.ErrParentNotAFolder)

	// another user's folder reads as absent
	_, err = svc.Upload(ctx, primitive.NewObjectID(), &dto.UploadRequest{
		Name: "e.txt", Type: "file", Data: b64("z"),
		ParentID: dto.ParentID(folder.GetID()),
	})
	require.ErrorIs(t, err, model.ErrParentNotFound)

	cnt, err := dao.CountFiles(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), cnt)
}

func TestUploadImageEnqueuesThumbnailTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, queue := newTestService(t)
	userID := primitive.NewObjectID()

	file, err := svc.Upload(ctx, userID, &dto.UploadRequest{
		Name: "cat.png", Type: "image", Data: b64("png-bytes"),
	})
	require.NoError(t, err)

	require.Equal(t, []thumbnailJob{{userID: userID.Hex(), fileID: file.GetID()}}, queue.jobs)
}

func TestUploadQueueFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, dao, _, queue := newTestService(t)
	queue.failNext = true

	file, err := svc.Upload(ctx, primitive.NewObjectID(), &dto.UploadRequest{
		Name: "cat.png", Type: "image", Data: b64("png-bytes"),
	})
	require.NoError(t, err)
	require.Empty(t, queue.jobs)

	// the record was still committed
	cnt, err := dao.CountFiles(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), cnt)
	require.NotEmpty(t, file.ContentRef)
}

func TestUploadContentFailureAbortsMetadata(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	logger, err := glog.NewConsoleWithName("test", glog.LevelError)
	require.NoError(t, err)

	dao := &fakeFileDao{}
	svc := New(logger, dao, failingStore{}, &fakeThumbQueue{})

	_, err = svc.Upload(ctx, primitive.NewObjectID(), &dto.UploadRequest{
		Name: "a.txt", Type: "file", Data: b64("x"),
	})
	require.Error(t, err)

	cnt, err := dao.CountFiles(ctx)
	require.NoError(t, err)
	require.Zero(t, cnt)
}

func TestListPagination(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)
	userID := primitive.NewObjectID()

	var uploaded []string
	for i := range 45 {
		f, err := svc.Upload(ctx, userID, &dto.UploadRequest{
			Name: fmt.Sprintf("file-%02d.txt", i),
			Type: "file",
			Data: b64("x"),
		})
		require.NoError(t, err)
		uploaded = append(uploaded, f.GetID())
	}

	seen := map[string]bool{}
	var total int
	for page, wantLen := range map[int64]int{0: 20, 1: 20, 2: 5} {
		files, err := svc.List(ctx, userID, "", page)
		require.NoError(t, err)
		require.Len(t, files, wantLen)
		for _, f := range files {
			require.False(t, seen[f.GetID()])
			seen[f.GetID()] = true
		}
		total += len(files)
	}
	require.Equal(t, 45, total)

	// first page is the most recent uploads, newest first
	first, err := svc.List(ctx, userID, "", 0)
	require.NoError(t, err)
	require.Equal(t, uploaded[44], first[0].GetID())
	require.Equal(t, uploaded[25], first[19].GetID())

	// pages beyond the end and unknown parents are empty, not errors
	empty, err := svc.List(ctx, userID, "", 3)
	require.NoError(t, err)
	require.Empty(t, empty)

	empty, err = svc.List(ctx, userID, primitive.NewObjectID().Hex(), 0)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSetVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)
	userID := primitive.NewObjectID()

	file, err := svc.Upload(ctx, userID, &dto.UploadRequest{
		Name: "a.txt", Type: "file", Data: b64("x"),
	})
	require.NoError(t, err)

	published, err := svc.SetVisibility(ctx, userID, file.GetID(), true)
	require.NoError(t, err)
	require.True(t, published.IsPublic)

	// unpublish twice, the second call is a no-op returning the same record
	for range 2 {
		unpublished, err := svc.SetVisibility(ctx, userID, file.GetID(), false)
		require.NoError(t, err)
		require.False(t, unpublished.IsPublic)
		require.Equal(t, file.GetID(), unpublished.GetID())
	}

	// not the owner
	_, err = svc.SetVisibility(ctx, primitive.NewObjectID(), file.GetID(), true)
	require.ErrorIs(t, err, model.ErrForbidden)

	// absent record
	_, err = svc.SetVisibility(ctx, userID, primitive.NewObjectID().Hex(), true)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestGetContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)
	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	file, err := svc.Upload(ctx, userID, &dto.UploadRequest{
		Name: "a.txt", Type: "file", Data: b64("hello"),
	})
	require.NoError(t, err)

	// owner reads private content
	data, name, err := svc.GetContent(ctx, &userID, file.GetID(), "")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
	require.Equal(t, "a.txt", name)

	// private content is hidden from strangers and anonymous readers
	_, _, err = svc.GetContent(ctx, &otherID, file.GetID(), "")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, _, err = svc.GetContent(ctx, nil, file.GetID(), "")
	require.ErrorIs(t, err, model.ErrNotFound)

	// once published anyone may read it
	_, err = svc.SetVisibility(ctx, userID, file.GetID(), true)
	require.NoError(t, err)
	data, _, err = svc.GetContent(ctx, nil, file.GetID(), "")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	// a thumbnail variant the worker has not generated yet
	_, _, err = svc.GetContent(ctx, &userID, file.GetID(), "500")
	require.ErrorIs(t, err, model.ErrNotFound)

	// folders have no content
	folder, err := svc.Upload(ctx, userID, &dto.UploadRequest{Name: "d", Type: "folder"})
	require.NoError(t, err)
	_, _, err = svc.GetContent(ctx, &userID, folder.GetID(), "")
	require.ErrorIs(t, err, model.ErrFolderHasNoContent)
}
