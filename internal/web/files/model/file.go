package model

import (
	"time"

	gutils "github.com/Laisky/go-utils/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileType is the closed set of file kinds.
type FileType string

const (
	// FileTypeFolder a folder, never has content
	FileTypeFolder FileType = "folder"
	// FileTypeFile a regular file
	FileTypeFile FileType = "file"
	// FileTypeImage an image, thumbnails are generated asynchronously
	FileTypeImage FileType = "image"
)

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}

	return false
}

// RootFolderID is the stored sentinel for files at the top of a user's
// hierarchy. It renders as the number 0 in API responses.
const RootFolderID = "0"

// File is a node in a user's file hierarchy.
//
// ParentID is either RootFolderID or the hex id of an existing folder
// owned by the same user; it is fixed at creation. ContentRef points into
// the content store and is set exactly when Type != folder.
type File struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
	UserID     primitive.ObjectID `bson:"userId"`
	Name       string             `bson:"name"`
	Type       FileType           `bson:"type"`
	IsPublic   bool               `bson:"isPublic"`
	ParentID   string             `bson:"parentId"`
	ContentRef string             `bson:"contentRef,omitempty"`
}

// GetID get id
func (f *File) GetID() string {
	return f.ID.Hex()
}

// NewFile create a new file record
func NewFile() *File {
	return &File{
		ID:        primitive.NewObjectID(),
		CreatedAt: gutils.Clock.GetUTCNow(),
		ParentID:  RootFolderID,
	}
}
