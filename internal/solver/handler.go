package solver

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/eleven-am/snapsolve/internal/dto"
	"github.com/eleven-am/snapsolve/internal/shared"
	"github.com/labstack/echo/v4"
)

const FormField = "screenshot"

type Handler struct {
	service   *Service
	uploadDir string
	logger    *slog.Logger
}

func NewHandler(service *Service, uploadDir string, logger *slog.Logger) *Handler {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &Handler{
		service:   service,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/ask", h.Ask)
	g.POST("/solve", h.Solve)
}

// Ask godoc
// @Summary      Answer a text question
// @Description  Sends the question to the text model as a single-turn conversation
// @Tags         solver
// @Accept       json
// @Produce      json
// @Param        request  body      dto.AskRequest  true  "Question"
// @Success      200      {object}  dto.AskResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /api/ask [post]
func (h *Handler) Ask(c echo.Context) error {
	var req dto.AskRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest(ErrEmptyQuestion.Error())
	}

	answer, err := h.service.AnswerText(c.Request().Context(), req.Question)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.AskResponse{Answer: answer})
}

// Solve godoc
// @Summary      Solve a screenshot
// @Description  Submits the uploaded image to the vision model and returns the normalized solution text
// @Tags         solver
// @Accept       multipart/form-data
// @Produce      json
// @Param        screenshot  formData  file  true  "Screenshot image"
// @Success      200         {object}  dto.SolveResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Failure      413         {object}  dto.ErrorResponse
// @Failure      500         {object}  dto.ErrorResponse
// @Router       /api/solve [post]
func (h *Handler) Solve(c echo.Context) error {
	fh, err := c.FormFile(FormField)
	if err != nil {
		if tooLarge(err) {
			return shared.RequestTooLarge("Screenshot too large")
		}
		return shared.BadRequest(ErrNoFile.Error())
	}

	path, err := h.spool(fh)
	if err != nil {
		h.logger.Error("failed to spool upload", "filename", fh.Filename, "error", err)
		return shared.InternalError(ErrSolveFailed.Error())
	}

	solution, err := h.service.SolveFile(c.Request().Context(), path, fh.Header.Get("Content-Type"), fh.Filename)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.SolveResponse{Solution: solution})
}

func (h *Handler) spool(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(h.uploadDir, "upload-*"+filepath.Ext(filepath.Base(fh.Filename)))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		RemoveFile(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		RemoveFile(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// tooLarge reports whether reading the body hit a size limit, either echo's
// BodyLimit middleware or an http.MaxBytesReader.
func tooLarge(err error) bool {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
		return true
	}
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNoFile), errors.Is(err, ErrEmptyQuestion):
		return shared.BadRequest(err.Error())
	case errors.Is(err, ErrAnswerFailed), errors.Is(err, ErrSolveFailed):
		return shared.InternalError(err.Error())
	default:
		return shared.InternalError(http.StatusText(http.StatusInternalServerError))
	}
}
