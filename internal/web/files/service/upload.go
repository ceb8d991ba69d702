package service

import (
	"context"
	"encoding/base64"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/files/dto"
	"github.com/Laisky/files-manager/internal/web/files/model"
	"github.com/Laisky/files-manager/library/storage"
)

// Upload runs the upload pipeline: validate, resolve the parent folder,
// persist content, persist metadata, then schedule thumbnail generation
// for images. Content is written before any metadata so a failed write
// leaves no orphaned record; a failed enqueue is logged but does not fail
// the upload.
func (s *Files) Upload(ctx context.Context,
	userID primitive.ObjectID,
	req *dto.UploadRequest,
) (*model.File, error) {
	if req.Name == "" {
		return nil, errors.WithStack(model.ErrMissingName)
	}
	fileType := model.FileType(req.Type)
	if !fileType.Valid() {
		return nil, errors.WithStack(model.ErrMissingType)
	}
	if req.Data == "" && fileType != model.FileTypeFolder {
		return nil, errors.WithStack(model.ErrMissingData)
	}

	parentID := string(req.ParentID)
	if parentID == "" {
		parentID = model.RootFolderID
	}
	if parentID != model.RootFolderID {
		if err := s.resolveParent(ctx, userID, parentID); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	file := model.NewFile()
	file.UserID = userID
	file.Name = req.Name
	file.Type = fileType
	file.IsPublic = req.IsPublic
	file.ParentID = parentID

	if fileType != model.FileTypeFolder {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, errors.WithStack(model.ErrMissingData)
		}

		// must succeed before the record is committed
		if file.ContentRef, err = s.store.Put(ctx, data); err != nil {
			return nil, errors.Wrap(err, "persist content")
		}
	}

	if err := s.dao.CreateFile(ctx, file); err != nil {
		return nil, errors.WithStack(err)
	}

	if fileType == model.FileTypeImage {
		if _, err := s.queue.AddThumbnailTask(ctx, userID.Hex(), file.GetID()); err != nil {
			s.logger.Error("enqueue thumbnail task",
				zap.Error(err), zap.String("file", file.GetID()))
		}
	}

	return file, nil
}

// resolveParent requires parentID to name an existing folder of the same
// user. Another user's folder reads as absent rather than forbidden.
func (s *Files) resolveParent(ctx context.Context, userID primitive.ObjectID, parentID string) error {
	id, err := primitive.ObjectIDFromHex(parentID)
	if err != nil {
		return errors.WithStack(model.ErrParentNotFound)
	}

	parent, err := s.dao.GetFileByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return errors.WithStack(model.ErrParentNotFound)
		}

		return errors.WithStack(err)
	}

	if parent.UserID != userID {
		return errors.WithStack(model.ErrParentNotFound)
	}
	if parent.Type != model.FileTypeFolder {
		return errors.WithStack(model.ErrParentNotAFolder)
	}

	return nil
}

// GetContent returns the payload of a non-folder file. requester is nil
// for anonymous reads; private files are visible to their owner only and
// read as absent to everyone else. size selects a thumbnail variant
// generated by the worker ("500", "250", "100").
func (s *Files) GetContent(ctx context.Context,
	requester *primitive.ObjectID,
	idHex string,
	size string,
) (data []byte, name string, err error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, "", errors.WithStack(model.ErrNotFound)
	}

	file, err := s.dao.GetFileByID(ctx, id)
	if err != nil {
		return nil, "", errors.WithStack(err)
	}

	if !file.IsPublic && (requester == nil || *requester != file.UserID) {
		return nil, "", errors.WithStack(model.ErrNotFound)
	}
	if file.Type == model.FileTypeFolder {
		return nil, "", errors.WithStack(model.ErrFolderHasNoContent)
	}

	ref := file.ContentRef
	if size != "" {
		ref += "_" + size
	}

	if data, err = s.store.Get(ctx, ref); err != nil {
		if errors.Is(err, storage.ErrNotExists) {
			return nil, "", errors.WithStack(model.ErrNotFound)
		}

		return nil, "", errors.Wrap(err, "read content")
	}

	return data, file.Name, nil
}
