package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/files-manager/internal/web/files/model"
	"github.com/Laisky/files-manager/library/db/mongo"
)

// CreateFile inserts a new file record.
func (d *Files) CreateFile(ctx context.Context, file *model.File) error {
	if _, err := d.GetFilesCol().InsertOne(ctx, file); err != nil {
		return errors.Wrapf(err, "insert file %q", file.Name)
	}

	d.logger.Debug("insert new file",
		zap.String("id", file.GetID()),
		zap.String("type", string(file.Type)))
	return nil
}

// GetFile loads a file scoped by owner; other users' records read as absent.
func (d *Files) GetFile(ctx context.Context, id, userID primitive.ObjectID) (*model.File, error) {
	file := new(model.File)
	if err := d.GetFilesCol().
		FindOne(ctx, bson.D{
			{Key: "_id", Value: id},
			{Key: "userId", Value: userID},
		}).
		Decode(file); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "find file %q", id.Hex())
	}

	return file, nil
}

// GetFileByID loads a file regardless of owner.
func (d *Files) GetFileByID(ctx context.Context, id primitive.ObjectID) (*model.File, error) {
	file := new(model.File)
	if err := d.GetFilesCol().
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}).
		Decode(file); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "find file %q", id.Hex())
	}

	return file, nil
}

// ListFiles returns one page of the owner's files under parentID, most
// recent first. An unknown parentID yields an empty page.
func (d *Files) ListFiles(ctx context.Context,
	userID primitive.ObjectID,
	parentID string,
	page int64,
) ([]*model.File, error) {
	cur, err := d.GetFilesCol().Find(ctx,
		bson.D{
			{Key: "userId", Value: userID},
			{Key: "parentId", Value: parentID},
		},
		options.Find().
			SetSort(bson.D{{Key: "_id", Value: -1}}).
			SetSkip(page*PageSize).
			SetLimit(PageSize),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find files")
	}
	defer cur.Close(ctx) // nolint:errcheck

	files := []*model.File{}
	if err = cur.All(ctx, &files); err != nil {
		return nil, errors.Wrap(err, "decode files")
	}

	return files, nil
}

// SetVisibility updates isPublic and returns the updated record.
func (d *Files) SetVisibility(ctx context.Context,
	id primitive.ObjectID,
	isPublic bool,
) (*model.File, error) {
	file := new(model.File)
	if err := d.GetFilesCol().
		FindOneAndUpdate(ctx,
			bson.D{{Key: "_id", Value: id}},
			bson.M{"$set": bson.M{"isPublic": isPublic}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).
		Decode(file); err != nil {
		if mongo.NotFound(err) {
			return nil, errors.WithStack(model.ErrNotFound)
		}

		return nil, errors.Wrapf(err, "update file %q", id.Hex())
	}

	return file, nil
}

// CountFiles returns the number of file records.
func (d *Files) CountFiles(ctx context.Context) (int64, error) {
	cnt, err := d.GetFilesCol().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "count files")
	}

	return cnt, nil
}
