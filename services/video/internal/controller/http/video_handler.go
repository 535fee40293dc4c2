package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/usecase"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type VideoHandler struct {
	videoUseCase usecase.VideoUseCase
	logger       *logger.Logger
}

func NewVideoHandler(videoUseCase usecase.VideoUseCase, logger *logger.Logger) *VideoHandler {
	return &VideoHandler{
		videoUseCase: videoUseCase,
		logger:       logger,
	}
}

type CreateVideoRequest struct {
	Title           string `form:"title" binding:"required,max=255"`
	Description     string `form:"description"`
	Category        string `form:"category" binding:"max=100"`
	Duration        *int   `form:"duration" binding:"omitempty,min=0"`
	QualityHD       bool   `form:"quality_hd"`
	QualityStandard *bool  `form:"quality_standard"`
}

// CreateVideo godoc
// @Summary      Upload a video
// @Description  Upload a lesson video with an optional thumbnail. Teachers and admins only.
// @Tags         videos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true "Video title"
// @Param        description formData string false "Video description"
// @Param        category formData string false "Category"
// @Param        duration formData int false "Duration in seconds"
// @Param        quality_hd formData bool false "HD available"
// @Param        quality_standard formData bool false "Standard quality available"
// @Param        video formData file true "Video file (mp4/mov/webm/mkv/avi)"
// @Param        thumbnail formData file false "Thumbnail image (jpg/jpeg/png/webp)"
// @Success      201  {object}  entity.Video
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /videos [post]
func (h *VideoHandler) CreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	videoFile, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video file is required"})
		return
	}

	videoSrc, err := videoFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
		return
	}
	defer videoSrc.Close()

	input := entity.NewVideo{
		TeacherID:       c.GetString(middleware.ContextUserID),
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		QualityHD:       req.QualityHD,
		QualityStandard: req.QualityStandard == nil || *req.QualityStandard,
		Duration:        req.Duration,
		Video:           toUpload(videoFile, videoSrc),
	}

	if thumbFile, err := c.FormFile("thumbnail"); err == nil {
		thumbSrc, err := thumbFile.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
			return
		}
		defer thumbSrc.Close()
		thumb := toUpload(thumbFile, thumbSrc)
		input.Thumbnail = &thumb
	}

	video, err := h.videoUseCase.CreateVideo(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, entity.ErrUnsupportedExt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to create video: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
		return
	}

	c.JSON(http.StatusCreated, video)
}

// ListVideos godoc
// @Summary      List videos
// @Description  Newest first. Thumbnails are short-lived signed URLs.
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        category query string false "Category filter"
// @Param        limit query int false "Page size" default(20)
// @Param        offset query int false "Offset" default(0)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /videos [get]
func (h *VideoHandler) ListVideos(c *gin.Context) {
	limit, offset := pagination(c)

	videos, err := h.videoUseCase.ListVideos(c.Request.Context(), c.Query("category"), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list videos: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos, "count": len(videos)})
}

// GetVideo godoc
// @Summary      Get video metadata
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Video ID"
// @Success      200  {object}  entity.Video
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /videos/{id} [get]
func (h *VideoHandler) GetVideo(c *gin.Context) {
	video, err := h.videoUseCase.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		h.logger.Error("Failed to get video: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get video"})
		return
	}

	c.JSON(http.StatusOK, video)
}

// GetMyVideos godoc
// @Summary      List the caller's own uploads
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size" default(20)
// @Param        offset query int false "Offset" default(0)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /teachers/me/videos [get]
func (h *VideoHandler) GetMyVideos(c *gin.Context) {
	limit, offset := pagination(c)

	videos, err := h.videoUseCase.GetTeacherVideos(c.Request.Context(), c.GetString(middleware.ContextUserID), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list teacher videos: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos, "count": len(videos)})
}

// DeleteVideo godoc
// @Summary      Delete a video
// @Description  Owner only. Removes the stored objects, the row and its view counters.
// @Tags         videos
// @Security     BearerAuth
// @Param        id path string true "Video ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /videos/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	err := h.videoUseCase.DeleteVideo(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID))
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrVideoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		case errors.Is(err, entity.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to delete video: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
}

// GetMyViews godoc
// @Summary      List the caller's view counters
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /views/me [get]
func (h *VideoHandler) GetMyViews(c *gin.Context) {
	views, err := h.videoUseCase.GetMyViews(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.logger.Error("Failed to list views: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list views"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"views": views})
}

func toUpload(header *multipart.FileHeader, file multipart.File) entity.Upload {
	return entity.Upload{
		Body:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
}

func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
