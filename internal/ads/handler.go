package ads

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/calendar"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/middleware"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/response"
)

// CreateRequest is the body for POST /ads.
type CreateRequest struct {
	Title           string `json:"title" binding:"required"`
	CustomerName    string `json:"customer_name" binding:"required"`
	Description     string `json:"description"`
	IncentiveDetail string `json:"incentive_details"`
	SurveyLink      string `json:"survey_link"`
	PublishAt       string `json:"publish_at" binding:"required"`
	DurationDays    int    `json:"duration_days" binding:"required,min=1"`
}

// ExtendRequest is the body for POST /ads/:id/extend.
type ExtendRequest struct {
	PublishAt    string `json:"publish_at" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
	Note         string `json:"note"`
}

// UpdateRequest is the body for PATCH /ads/:id. Nil fields stay unchanged.
type UpdateRequest struct {
	Title           *string `json:"title"`
	CustomerName    *string `json:"customer_name"`
	Description     *string `json:"description"`
	IncentiveDetail *string `json:"incentive_details"`
	SurveyLink      *string `json:"survey_link"`
	Note            *string `json:"note"`
	PublishAt       *string `json:"publish_at"`
	DurationDays    *int    `json:"duration_days"`
}

// Handler handles ad HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an ad handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// writeError maps domain errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	var syncErr *calendar.SyncError
	switch {
	case errors.Is(err, ErrAdNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrSlotFull), errors.Is(err, ErrImmutableSchedule),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotExtendable):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrIncompleteBrief):
		response.UnprocessableEntity(c, err.Error())
	case errors.As(err, &syncErr):
		response.BadGateway(c, err.Error())
	default:
		response.Internal(c, err.Error())
	}
}

// Create handles POST /ads.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	publishAt, err := parseTime(req.PublishAt)
	if err != nil {
		response.BadRequest(c, "invalid publish_at")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	ad, err := h.svc.CreateAd(c.Request.Context(), CreateAdInput{
		Title:           req.Title,
		CustomerName:    req.CustomerName,
		Description:     req.Description,
		IncentiveDetail: req.IncentiveDetail,
		SurveyLink:      req.SurveyLink,
		PublishAt:       publishAt,
		DurationDays:    req.DurationDays,
	}, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, ad)
}

// Extend handles POST /ads/:id/extend.
func (h *Handler) Extend(c *gin.Context) {
	originalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}
	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	publishAt, err := parseTime(req.PublishAt)
	if err != nil {
		response.BadRequest(c, "invalid publish_at")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	ad, err := h.svc.ExtendAd(c.Request.Context(), originalID, ExtendAdInput{
		PublishAt:    publishAt,
		DurationDays: req.DurationDays,
		Note:         req.Note,
	}, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, ad)
}

// Schedule handles POST /ads/:id/schedule.
func (h *Handler) Schedule(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	ad, err := h.svc.ScheduleAd(c.Request.Context(), adID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, ad)
}

// Cancel handles POST /ads/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	ad, err := h.svc.CancelAd(c.Request.Context(), adID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, ad)
}

// Update handles PATCH /ads/:id.
func (h *Handler) Update(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	in := UpdateAdInput{
		Title:           req.Title,
		CustomerName:    req.CustomerName,
		Description:     req.Description,
		IncentiveDetail: req.IncentiveDetail,
		SurveyLink:      req.SurveyLink,
		Note:            req.Note,
		DurationDays:    req.DurationDays,
	}
	if req.PublishAt != nil {
		t, err := parseTime(*req.PublishAt)
		if err != nil {
			response.BadRequest(c, "invalid publish_at")
			return
		}
		in.PublishAt = &t
	}

	ad, err := h.svc.UpdateAd(c.Request.Context(), adID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, ad)
}

// GetByID handles GET /ads/:id.
func (h *Handler) GetByID(c *gin.Context) {
	adID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}
	ad, err := h.svc.GetAd(c.Request.Context(), adID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, ad)
}

// List handles GET /ads. Query ?status= filters by effective status.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.ListAds(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, list)
}

// Availability handles GET /slots/availability?date=YYYY-MM-DD&ad_type=new|extended.
func (h *Handler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, "date is required")
		return
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		response.BadRequest(c, "invalid date: use YYYY-MM-DD")
		return
	}
	adType := models.AdType(c.DefaultQuery("ad_type", string(models.AdTypeNew)))
	if adType != models.AdTypeNew && adType != models.AdTypeExtended {
		response.BadRequest(c, "ad_type must be new or extended")
		return
	}

	info, err := h.svc.CheckAvailability(c.Request.Context(), date, adType)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, info)
}
