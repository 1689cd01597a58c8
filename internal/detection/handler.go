package detection

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/eleven-am/cascade-detect/internal/artifact"
	"github.com/eleven-am/cascade-detect/internal/detect"
	"github.com/eleven-am/cascade-detect/internal/dto"
	"github.com/eleven-am/cascade-detect/internal/pipeline"
	"github.com/eleven-am/cascade-detect/internal/respond"
	"github.com/eleven-am/cascade-detect/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	imageField   = "image"
	videoField   = "video"
	featureField = "feature"

	maxValueBytes = 1 << 10
)

var errAborted = errors.New("request aborted before completion")

type Handler struct {
	service   *pipeline.Service
	scratch   *artifact.Scratch
	responder *respond.Responder
	logger    *slog.Logger
}

func NewHandler(service *pipeline.Service, scratch *artifact.Scratch, responder *respond.Responder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   service,
		scratch:   scratch,
		responder: responder,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/detect", h.DetectImage)
	g.POST("/detect_video", h.DetectVideo)
	g.POST("/detect_webcam", h.DetectWebcam)
}

// @Summary      Detect objects in an image
// @Description  Runs the selected cascade over the uploaded image and returns it with the detections drawn in
// @Tags         detection
// @Accept       multipart/form-data
// @Produce      json
// @Param        image    formData  file    true   "Image to analyse"
// @Param        feature  formData  string  false  "Detection category" Enums(face, pedestrian, vehicle) default(face)
// @Success      200  {object}  dto.ImageResponse
// @Failure      400  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /detect [post]
func (h *Handler) DetectImage(c echo.Context) error {
	up, cat, err := h.readUpload(c, imageField, false)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	job := pipeline.NewJob(cat, h.logger)
	defer job.Fail(errAborted)

	res, err := h.service.ProcessImage(ctx, job, up.data)
	if err != nil {
		return h.fail(job, err)
	}

	delivery, err := h.responder.Image(ctx, res.JPEG, up.unique)
	if err != nil {
		return h.fail(job, err)
	}

	err = c.JSON(http.StatusOK, dto.ImageResponse{
		ImageData:  delivery.Data,
		ImageURL:   delivery.URL,
		Detections: res.Detections,
	})
	job.Finish()
	return err
}

// @Summary      Detect objects in a video
// @Description  Annotates every frame of the uploaded video and returns the re-encoded MP4
// @Tags         detection
// @Accept       multipart/form-data
// @Produce      json
// @Param        video    formData  file    true   "Video to analyse"
// @Param        feature  formData  string  false  "Detection category" Enums(face, pedestrian, vehicle) default(face)
// @Success      200  {object}  dto.VideoResponse
// @Failure      400  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /detect_video [post]
func (h *Handler) DetectVideo(c echo.Context) error {
	up, cat, err := h.readUpload(c, videoField, true)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	job := pipeline.NewJob(cat, h.logger)
	job.OnCleanup("upload", func() error { return artifact.Remove(up.path) })
	defer job.Fail(errAborted)

	outPath := h.scratch.ProcessedPath(up.unique, ".mp4")
	job.OnCleanup("processed", func() error { return artifact.Remove(outPath) })

	res, err := h.service.ProcessVideo(ctx, job, up.path, outPath)
	if err != nil {
		return h.fail(job, err)
	}

	delivery, err := h.responder.Video(ctx, outPath)
	if err != nil {
		return h.fail(job, err)
	}

	h.logger.Info("video processed", "job_id", job.ID, "frames", res.Frames, "category", string(cat), "totals", res.Totals)

	err = c.JSON(http.StatusOK, dto.VideoResponse{
		VideoData:        delivery.Data,
		VideoURL:         delivery.URL,
		OriginalFilename: artifact.SecureFilename(up.filename),
		Detections:       res.Detections,
	})
	job.Finish()
	return err
}

// @Summary      Detect objects in a webcam frame
// @Description  Returns raw rectangles and color tags for client-side drawing; the frame itself is not returned
// @Tags         detection
// @Accept       multipart/form-data
// @Produce      json
// @Param        image    formData  file    true   "Captured frame"
// @Param        feature  formData  string  false  "Detection category" Enums(face, pedestrian, vehicle) default(face)
// @Success      200  {object}  dto.WebcamResponse
// @Failure      400  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /detect_webcam [post]
func (h *Handler) DetectWebcam(c echo.Context) error {
	up, cat, err := h.readUpload(c, imageField, false)
	if err != nil {
		return err
	}

	job := pipeline.NewJob(cat, h.logger)
	defer job.Fail(errAborted)

	res, err := h.service.Overlay(c.Request().Context(), job, up.data)
	if err != nil {
		return h.fail(job, err)
	}

	err = c.JSON(http.StatusOK, dto.WebcamResponse{
		Boxes:      res.Boxes,
		Colors:     res.Colors,
		Detections: res.Detections,
	})
	job.Finish()
	return err
}

// formUpload is the one file part a request carries. Images stay in memory,
// videos are spooled straight into the scratch uploads directory.
type formUpload struct {
	filename string
	unique   string
	data     []byte
	path     string
}

// readUpload streams the multipart body part by part. Parts other than the
// file field and the feature value are drained without being buffered, so a
// rejected request never reaches the filesystem.
func (h *Handler) readUpload(c echo.Context, field string, spool bool) (*formUpload, detect.Category, error) {
	mr, err := c.Request().MultipartReader()
	if err != nil {
		return nil, "", missingUpload(field)
	}

	var (
		up       *formUpload
		selected bool
		feature  string
	)
	reject := func(err error) (*formUpload, detect.Category, error) {
		if up != nil && up.path != "" {
			artifact.Remove(up.path)
		}
		return nil, "", err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return reject(bodyError(err, "malformed_form"))
		}

		switch name := part.FormName(); {
		case name == featureField:
			v, err := io.ReadAll(io.LimitReader(part, maxValueBytes))
			if err != nil {
				part.Close()
				return reject(bodyError(err, "malformed_form"))
			}
			feature = string(v)
		case name == field && up == nil:
			selected = true
			if part.FileName() == "" {
				break
			}
			up, err = h.receive(part, spool)
			if err != nil {
				part.Close()
				return reject(err)
			}
		}
		part.Close()
	}

	if up == nil {
		if selected {
			return nil, "", shared.BadRequest("empty_filename", fmt.Sprintf("No %s selected", field))
		}
		return nil, "", missingUpload(field)
	}

	cat, err := detect.ParseCategory(feature)
	if err != nil {
		return reject(shared.BadRequest("invalid_feature", err.Error()))
	}
	return up, cat, nil
}

func (h *Handler) receive(part *multipart.Part, spool bool) (*formUpload, error) {
	up := &formUpload{
		filename: part.FileName(),
		unique:   h.scratch.UniqueName(part.FileName()),
	}

	if !spool {
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, bodyError(err, "unreadable_upload")
		}
		up.data = data
		return up, nil
	}

	path, err := h.scratch.SaveUpload(up.unique, part)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		h.logger.Error("failed to save upload", "error", err)
		return nil, shared.InternalError("upload_failed", "could not store upload")
	}
	up.path = path
	return up, nil
}

func (h *Handler) fail(job *pipeline.Job, err error) error {
	job.Fail(err)

	code := "processing_failed"
	if errors.Is(err, detect.ErrClassifierUnavailable) {
		code = "classifier_unavailable"
	}
	h.logger.Error("detection failed", "job_id", job.ID, "category", string(job.Category), "error", err)
	return shared.InternalError(code, err.Error())
}

func missingUpload(field string) error {
	return shared.BadRequest("missing_"+field, fmt.Sprintf("No %s provided", field))
}

// bodyError keeps echo's 413 from BodyLimit intact and reports anything else
// as a malformed request.
func bodyError(err error, code string) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return shared.BadRequest(code, err.Error())
}
