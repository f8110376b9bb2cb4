package handlers

import (
	"log"

	"healthtracker/internal/middleware"
	"healthtracker/internal/models"
	"healthtracker/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TrackHandler handles HTTP requests for daily health tracks. Every route
// acts on the authenticated user's own tracks.
type TrackHandler struct {
	service     *services.TrackService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewTrackHandler creates a new TrackHandler.
func NewTrackHandler(service *services.TrackService, authService *services.AuthService, validate *validator.Validate) *TrackHandler {
	return &TrackHandler{
		service:     service,
		authService: authService,
		validate:    validate,
	}
}

// RegisterRoutes registers the track routes behind the JWT middleware.
func (h *TrackHandler) RegisterRoutes(router fiber.Router) {
	trackRoutes := router.Group("/tracks", middleware.AuthRequired(h.authService))
	trackRoutes.Get("/", h.HandleGetTracks)
	trackRoutes.Get("/:date", h.HandleGetTracksForDate)
	trackRoutes.Put("/:date", h.HandleUpsertTrack)
	trackRoutes.Delete("/:date", h.HandleDeleteTrack)
}

// HandleGetTracks lists all of the caller's tracks, newest first.
func (h *TrackHandler) HandleGetTracks(c *fiber.Ctx) error {
	tracks, err := h.service.ListTracks(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "fetching tracks", err)
	}
	return c.JSON(tracks)
}

// HandleGetTracksForDate returns an array holding the day's track, or an empty array.
func (h *TrackHandler) HandleGetTracksForDate(c *fiber.Ctx) error {
	tracks, err := h.service.GetTracksForDate(c.UserContext(), middleware.UserID(c), c.Params("date"))
	if err != nil {
		return respondError(c, "fetching tracks for date", err)
	}
	return c.JSON(tracks)
}

// HandleUpsertTrack creates or fully replaces the day's track.
func (h *TrackHandler) HandleUpsertTrack(c *fiber.Ctx) error {
	var in models.TrackInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			log.Printf("Error parsing track request body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}
	if err := h.validate.Struct(in); err != nil {
		return respondValidation(c, err)
	}

	track, err := h.service.UpsertTrack(c.UserContext(), middleware.UserID(c), c.Params("date"), in)
	if err != nil {
		return respondError(c, "updating/creating track", err)
	}
	return c.JSON(track)
}

// HandleDeleteTrack deletes the day's track. A day without a track still succeeds.
func (h *TrackHandler) HandleDeleteTrack(c *fiber.Ctx) error {
	if err := h.service.DeleteTrack(c.UserContext(), middleware.UserID(c), c.Params("date")); err != nil {
		return respondError(c, "deleting track", err)
	}
	return c.JSON(fiber.Map{"message": "Track deleted successfully"})
}
