package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"congregate/internal/common"
	"congregate/internal/services"
)

// SongHandlers handles song library HTTP requests
type SongHandlers struct {
	songService services.SongService
}

func NewSongHandlers(songService services.SongService) *SongHandlers {
	return &SongHandlers{songService: songService}
}

func (h *SongHandlers) Create(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.CreateSongRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.OrganizationID = orgID

	song, err := h.songService.Create(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, song)
}

func (h *SongHandlers) Get(c echo.Context) error {
	orgID, songID, err := orgScopedIDs(c, "songID")
	if err != nil {
		return err
	}

	song, err := h.songService.GetByID(c.Request().Context(), orgID, songID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Song not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get song")
	}

	return c.JSON(http.StatusOK, song)
}

func (h *SongHandlers) Update(c echo.Context) error {
	orgID, songID, err := orgScopedIDs(c, "songID")
	if err != nil {
		return err
	}

	var req services.UpdateSongRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.OrganizationID = orgID
	req.ID = songID

	if err := h.songService.Update(c.Request().Context(), &req); err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Song not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Song updated successfully"})
}

func (h *SongHandlers) Delete(c echo.Context) error {
	orgID, songID, err := orgScopedIDs(c, "songID")
	if err != nil {
		return err
	}

	if err := h.songService.Delete(c.Request().Context(), orgID, songID); err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Song not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete song")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Song deleted successfully"})
}

// List returns the organization's song library, optionally filtered by a
// search query over title and author.
func (h *SongHandlers) List(c echo.Context) error {
	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	songs, err := h.songService.Search(c.Request().Context(), orgID, c.QueryParam("q"), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list songs")
	}

	return c.JSON(http.StatusOK, songs)
}

// UploadAttachment stores a chord chart or arrangement for a song.
func (h *SongHandlers) UploadAttachment(c echo.Context) error {
	orgID, songID, err := orgScopedIDs(c, "songID")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "File is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := h.songService.UploadAttachment(c.Request().Context(), orgID, songID, fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Song not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload attachment")
	}

	return c.JSON(http.StatusCreated, map[string]string{"attachment_key": key})
}

// GetAttachmentURL returns a short-lived download URL for a song attachment.
func (h *SongHandlers) GetAttachmentURL(c echo.Context) error {
	orgID, songID, err := orgScopedIDs(c, "songID")
	if err != nil {
		return err
	}

	url, err := h.songService.AttachmentURL(c.Request().Context(), orgID, songID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "Song not found")
		}
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func orgScopedIDs(c echo.Context, param string) (uuid.UUID, uuid.UUID, error) {
	orgID, err := common.ValidateUUID(c.Param("orgID"), "orgID")
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := common.ValidateUUID(c.Param(param), param)
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return orgID, id, nil
}
