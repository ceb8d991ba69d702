// Package controller exposes the file endpoints.
package controller

import (
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Laisky/files-manager/internal/web/ctxkeys"
	"github.com/Laisky/files-manager/internal/web/files/dto"
	"github.com/Laisky/files-manager/internal/web/files/model"
	"github.com/Laisky/files-manager/internal/web/files/service"
	usersModel "github.com/Laisky/files-manager/internal/web/users/model"
)

// Files controller type
type Files struct {
	logger glog.Logger
	svc    *service.Files
}

// New create new controller
func New(logger glog.Logger, svc *service.Files) *Files {
	return &Files{
		logger: logger,
		svc:    svc,
	}
}

// currentUser returns the user attached by the token middleware.
func currentUser(c *gin.Context) *usersModel.User {
	return c.MustGet(ctxkeys.User).(*usersModel.User)
}

// PostUpload handles POST /files.
func (ctl *Files) PostUpload(c *gin.Context) {
	user := currentUser(c)

	req := new(dto.UploadRequest)
	// an absent body reads as empty fields, validation produces the
	// client-facing message
	_ = c.ShouldBindJSON(req)

	file, err := ctl.svc.Upload(c.Request.Context(), user.ID, req)
	if err != nil {
		ctl.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewFileRecord(file))
}

// GetShow handles GET /files/:id.
func (ctl *Files) GetShow(c *gin.Context) {
	user := currentUser(c)

	file, err := ctl.svc.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		ctl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFileRecord(file))
}

// GetIndex handles GET /files?parentId=&page=.
func (ctl *Files) GetIndex(c *gin.Context) {
	user := currentUser(c)

	// non-numeric or negative pages read as page 0
	page, err := strconv.ParseInt(c.Query("page"), 10, 64)
	if err != nil || page < 0 {
		page = 0
	}

	files, err := ctl.svc.List(c.Request.Context(), user.ID, c.Query("parentId"), page)
	if err != nil {
		ctl.handleError(c, err)
		return
	}

	records := make([]*dto.FileRecord, 0, len(files))
	for _, f := range files {
		records = append(records, dto.NewFileRecord(f))
	}

	c.JSON(http.StatusOK, records)
}

// PutPublish handles PUT /files/:id/publish.
func (ctl *Files) PutPublish(c *gin.Context) {
	ctl.setVisibility(c, true)
}

// PutUnpublish handles PUT /files/:id/unpublish.
func (ctl *Files) PutUnpublish(c *gin.Context) {
	ctl.setVisibility(c, false)
}

func (ctl *Files) setVisibility(c *gin.Context, isPublic bool) {
	user := currentUser(c)

	file, err := ctl.svc.SetVisibility(c.Request.Context(), user.ID, c.Param("id"), isPublic)
	if err != nil {
		ctl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFileRecord(file))
}

// GetData handles GET /files/:id/data. No authentication is required;
// private files stay invisible to anyone but their owner.
func (ctl *Files) GetData(c *gin.Context) {
	var requester *primitive.ObjectID
	if v, ok := c.Get(ctxkeys.User); ok {
		requester = &v.(*usersModel.User).ID
	}

	data, name, err := ctl.svc.GetContent(c.Request.Context(),
		requester, c.Param("id"), c.Query("size"))
	if err != nil {
		ctl.handleError(c, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Data(http.StatusOK, contentType, data)
}

// handleError maps domain errors to the stable HTTP contract.
func (ctl *Files) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrMissingName),
		errors.Is(err, model.ErrMissingType),
		errors.Is(err, model.ErrMissingData),
		errors.Is(err, model.ErrParentNotFound),
		errors.Is(err, model.ErrParentNotAFolder),
		errors.Is(err, model.ErrFolderHasNoContent):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errors.Cause(err).Error()})
	case errors.Is(err, model.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": errors.Cause(err).Error()})
	case errors.Is(err, model.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errors.Cause(err).Error()})
	default:
		ctl.logger.Error("files api", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
