package api

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stenosis-api/internal/domain/entity"
	"stenosis-api/internal/domain/port"
	apperrors "stenosis-api/pkg/errors"
)

// Analyzer сценарии анализа, которые обслуживает API.
type Analyzer interface {
	ModelLoaded() bool
	ModelInfo() (entity.ModelInfo, bool)
	ProcessSingle(ctx context.Context, data []byte) (*entity.FrameAnalysis, error)
	DetectStenosis(ctx context.Context, images [][]byte) (*entity.BatchAnalysis, error)
	DetectFromCenter(ctx context.Context, dir string, center int) (*entity.SeriesAnalysis, error)
}

type Handler struct {
	analyzer Analyzer
	encoder  port.MaskEncoder
	version  string
	logger   *slog.Logger
}

func NewHandler(analyzer Analyzer, encoder port.MaskEncoder, version string, logger *slog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		encoder:  encoder,
		version:  version,
		logger:   logger,
	}
}

// Health GET /api/health
func (h *Handler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:      "healthy",
		ModelLoaded: h.analyzer.ModelLoaded(),
		Version:     h.version,
	}
	if info, ok := h.analyzer.ModelInfo(); ok {
		resp.Model = &ModelInfoResponse{
			Name:        info.Name,
			Backend:     info.Backend,
			Version:     info.Version,
			InputWidth:  info.InputWidth,
			InputHeight: info.InputHeight,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// DetectStenosis POST /api/detect-stenosis
func (h *Handler) DetectStenosis(c *gin.Context) {
	if !h.analyzer.ModelLoaded() {
		writeError(c, h.logger, apperrors.ErrModelNotLoaded)
		return
	}

	images, err := h.readImages(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	batch, err := h.analyzer.DetectStenosis(c.Request.Context(), images)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp, err := h.stenosisResponse(batch, includeMasks(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProcessSingle POST /api/process-single
func (h *Handler) ProcessSingle(c *gin.Context) {
	if !h.analyzer.ModelLoaded() {
		writeError(c, h.logger, apperrors.ErrModelNotLoaded)
		return
	}

	data, err := h.readSingle(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	fa, err := h.analyzer.ProcessSingle(c.Request.Context(), data)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := SingleResponse{
		Success:   true,
		AreaLeft:  fa.Areas.Left,
		AreaRight: fa.Areas.Right,
	}
	if includeMasks(c) {
		if resp.Mask, err = h.encodeMask(fa.Mask); err != nil {
			writeError(c, h.logger, err)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// DetectFromCenter POST /api/detect-stenosis-center
func (h *Handler) DetectFromCenter(c *gin.Context) {
	if !h.analyzer.ModelLoaded() {
		writeError(c, h.logger, apperrors.ErrModelNotLoaded)
		return
	}

	var req CenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, apperrors.WrapValidationError(err, "dicom_folder and center_slice are required"))
		return
	}

	res, err := h.analyzer.DetectFromCenter(c.Request.Context(), req.DICOMFolder, *req.CenterSlice)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	base, err := h.stenosisResponse(res.BatchAnalysis, includeMasks(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, CenterResponse{
		StenosisResponse: base,
		CenterSlice:      res.Center,
		StartSlice:       res.Start,
		EndSlice:         res.End,
	})
}

func (h *Handler) stenosisResponse(batch *entity.BatchAnalysis, withMasks bool) (StenosisResponse, error) {
	st := batch.Stenosis.Rounded()
	resp := StenosisResponse{
		Success:              true,
		StenosisLeftPercent:  st.LeftPercent,
		StenosisRightPercent: st.RightPercent,
		ProcessedImages:      len(batch.Frames),
		AreasLeft:            batch.AreasLeft(),
		AreasRight:           batch.AreasRight(),
		VesselDetected:       st.VesselDetected,
	}
	if st.VesselDetected {
		resp.Severity = string(st.Severity())
	}

	if withMasks {
		resp.Masks = make([]string, len(batch.Frames))
		for i, f := range batch.Frames {
			m, err := h.encodeMask(f.Mask)
			if err != nil {
				return StenosisResponse{}, err
			}
			resp.Masks[i] = m
		}
	}
	return resp, nil
}

func (h *Handler) encodeMask(mask entity.Mask) (string, error) {
	data, err := h.encoder.Encode(mask)
	if err != nil {
		return "", apperrors.WrapInternalError(err, "failed to encode mask")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// readImages принимает multipart-поле files или JSON {images: [...]}.
func (h *Handler) readImages(c *gin.Context) ([][]byte, error) {
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, apperrors.WrapValidationError(err, "invalid multipart form")
		}
		files := form.File["files"]
		if len(files) == 0 {
			return nil, apperrors.NewValidationError("no images provided")
		}
		images := make([][]byte, len(files))
		for i, fh := range files {
			if images[i], err = readFile(fh); err != nil {
				return nil, err
			}
		}
		return images, nil
	}

	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.WrapValidationError(err, "invalid request body")
	}
	if len(req.Images) == 0 {
		return nil, apperrors.NewValidationError("no images provided")
	}

	images := make([][]byte, len(req.Images))
	for i, s := range req.Images {
		data, err := decodeBase64(s)
		if err != nil {
			return nil, apperrors.WrapValidationError(err, "invalid base64 image").WithContext("index", i)
		}
		images[i] = data
	}
	return images, nil
}

// readSingle принимает multipart-поле file или JSON {image}.
func (h *Handler) readSingle(c *gin.Context) ([]byte, error) {
	if isMultipart(c) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, apperrors.WrapValidationError(err, "no file provided")
		}
		return readFile(fh)
	}

	var req SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.WrapValidationError(err, "invalid request body")
	}
	if req.Image == "" {
		return nil, apperrors.NewValidationError("no image provided")
	}
	data, err := decodeBase64(req.Image)
	if err != nil {
		return nil, apperrors.WrapValidationError(err, "invalid base64 image")
	}
	return data, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.WrapValidationError(err, "failed to open uploaded file").WithContext("file", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.WrapValidationError(err, "failed to read uploaded file").WithContext("file", fh.Filename)
	}
	return data, nil
}

// decodeBase64 понимает data URL и base64 без паддинга.
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)

	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

// includeMasks читает ?include_masks=, по умолчанию маски включены.
func includeMasks(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("include_masks", "true"))
	return err != nil || v
}
