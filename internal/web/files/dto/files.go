// Package dto defines the request/response shapes of the files API.
package dto

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/files-manager/internal/web/files/model"
)

// ParentID is a folder reference in the wire format: clients may send the
// number 0 or the string "0" for the root, or a hex id string. It always
// renders the root as the number 0.
type ParentID string

// UnmarshalJSON accepts both numeric and string encodings.
func (p *ParentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = model.RootFolderID
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "unmarshal parentId")
		}
		if s == "" {
			s = model.RootFolderID
		}
		*p = ParentID(s)
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errors.Wrap(err, "unmarshal parentId")
	}
	*p = ParentID(strconv.FormatInt(n, 10))
	return nil
}

// MarshalJSON renders the root sentinel as the number 0.
func (p ParentID) MarshalJSON() ([]byte, error) {
	if p == "" || p == model.RootFolderID {
		return []byte("0"), nil
	}

	return json.Marshal(string(p))
}

// UploadRequest is the body of POST /files.
type UploadRequest struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	ParentID ParentID `json:"parentId"`
	IsPublic bool     `json:"isPublic"`
	// Data is the base64-encoded content, required unless Type is folder.
	Data string `json:"data"`
}

// FileRecord is the public representation of a file.
type FileRecord struct {
	ID       string         `json:"id"`
	UserID   string         `json:"userId"`
	Name     string         `json:"name"`
	Type     model.FileType `json:"type"`
	IsPublic bool           `json:"isPublic"`
	ParentID ParentID       `json:"parentId"`
}

// NewFileRecord converts a stored file into its API shape.
func NewFileRecord(f *model.File) *FileRecord {
	return &FileRecord{
		ID:       f.GetID(),
		UserID:   f.UserID.Hex(),
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: ParentID(f.ParentID),
	}
}
