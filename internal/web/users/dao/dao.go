// Package dao contains the data access objects for user records.
package dao

import (
	glog "github.com/Laisky/go-utils/v6/log"
	mongoLib "go.mongodb.org/mongo-driver/mongo"

	"github.com/Laisky/files-manager/library/db/mongo"
)

const colUsers = "users"

// Users dao type
type Users struct {
	logger glog.Logger
	db     mongo.DB
}

// New create new dao
func New(logger glog.Logger, db mongo.DB) *Users {
	return &Users{
		logger: logger,
		db:     db,
	}
}

// GetUsersCol get users collection
func (d *Users) GetUsersCol() *mongoLib.Collection {
	return d.db.GetCol(colUsers)
}
