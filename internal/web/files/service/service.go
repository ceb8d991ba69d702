// Package service implements the file metadata operations and the upload
// pipeline.
package service

import (
	"context"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/files/model"
	"github.com/Laisky/files-manager/library/storage"
)

// FileDao persists file metadata.
type FileDao interface {
	CreateFile(ctx context.Context, file *model.File) error
	GetFile(ctx context.Context, id, userID primitive.ObjectID) (*model.File, error)
	GetFileByID(ctx context.Context, id primitive.ObjectID) (*model.File, error)
	ListFiles(ctx context.Context, userID primitive.ObjectID, parentID string, page int64) ([]*model.File, error)
	SetVisibility(ctx context.Context, id primitive.ObjectID, isPublic bool) (*model.File, error)
	CountFiles(ctx context.Context) (int64, error)
}

// TaskQueue accepts background work for external consumers.
type TaskQueue interface {
	AddThumbnailTask(ctx context.Context, userID, fileID string) (taskID string, err error)
}

// Files service type
type Files struct {
	logger glog.Logger
	dao    FileDao
	store  storage.Store
	queue  TaskQueue
}

// New create new service
func New(logger glog.Logger,
	dao FileDao,
	store storage.Store,
	queue TaskQueue,
) *Files {
	return &Files{
		logger: logger,
		dao:    dao,
		store:  store,
		queue:  queue,
	}
}

// Get returns the requester's file by hex id. Records of other users read
// as absent.
func (s *Files) Get(ctx context.Context, userID primitive.ObjectID, idHex string) (*model.File, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, errors.WithStack(model.ErrNotFound)
	}

	return s.dao.GetFile(ctx, id, userID)
}

// List returns one page of the requester's files under parentID.
func (s *Files) List(ctx context.Context,
	userID primitive.ObjectID,
	parentID string,
	page int64,
) ([]*model.File, error) {
	if parentID == "" {
		parentID = model.RootFolderID
	}

	return s.dao.ListFiles(ctx, userID, parentID, page)
}

// SetVisibility toggles isPublic. Only the owner may toggle; a record
// owned by someone else yields ErrForbidden, an absent one ErrNotFound.
func (s *Files) SetVisibility(ctx context.Context,
	userID primitive.ObjectID,
	idHex string,
	isPublic bool,
) (*model.File, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, errors.WithStack(model.ErrNotFound)
	}

	file, err := s.dao.GetFileByID(ctx, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if file.UserID != userID {
		return nil, errors.WithStack(model.ErrForbidden)
	}

	return s.dao.SetVisibility(ctx, id, isPublic)
}

// Count returns the number of file records.
func (s *Files) Count(ctx context.Context) (int64, error) {
	return s.dao.CountFiles(ctx)
}
