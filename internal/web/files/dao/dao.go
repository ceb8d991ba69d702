// Package dao contains the data access objects for file metadata.
package dao

import (
	glog "github.com/Laisky/go-utils/v6/log"
	mongoLib "go.mongodb.org/mongo-driver/mongo"

	"github.com/Laisky/files-manager/library/db/mongo"
)

const colFiles = "files"

// PageSize is the fixed page size of file listings.
const PageSize = 20

// Files dao type
type Files struct {
	logger glog.Logger
	db     mongo.DB
}

// New create new dao
func New(logger glog.Logger, db mongo.DB) *Files {
	return &Files{
		logger: logger,
		db:     db,
	}
}

// GetFilesCol get files collection
func (d *Files) GetFilesCol() *mongoLib.Collection {
	return d.db.GetCol(colFiles)
}
