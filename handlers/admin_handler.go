package handlers

import (
	"context"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"attendance-core/models"
	"attendance-core/pkg/apperr"
	"attendance-core/pkg/delaycalc"
	"attendance-core/pkg/trustedtime"
	util "attendance-core/pkg/utils"
	"attendance-core/repository"
	"attendance-core/service"
	syncpkg "attendance-core/sync"
)

type AdminHandler struct {
	binding         *service.BindingRegistry
	attendanceRepo  repository.AttendanceRepository
	holidayRepo     repository.HolidayRepository
	templateRepo    repository.TemplateRepository
	authority       *trustedtime.Authority
	coordinator     *syncpkg.Coordinator
	publicPortalURL string
}

func NewAdminHandler(
	binding *service.BindingRegistry,
	attendanceRepo repository.AttendanceRepository,
	holidayRepo repository.HolidayRepository,
	templateRepo repository.TemplateRepository,
	authority *trustedtime.Authority,
	coordinator *syncpkg.Coordinator,
	publicPortalURL string,
) *AdminHandler {
	return &AdminHandler{
		binding:         binding,
		attendanceRepo:  attendanceRepo,
		holidayRepo:     holidayRepo,
		templateRepo:    templateRepo,
		authority:       authority,
		coordinator:     coordinator,
		publicPortalURL: publicPortalURL,
	}
}

// ResetDevice godoc
// @Summary Reset an employee's device binding
// @Description Clears the bound device so the employee's next check-in claims a new one
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Unknown employee"
// @Router /admin/employees/{id}/reset-device [post]
func (h *AdminHandler) ResetDevice(c *fiber.Ctx) error {
	employeeID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid employee id"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := h.binding.Reset(ctx, employeeID); err != nil {
		if apperr.IsState(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reset device binding"})
	}
	return c.JSON(fiber.Map{"message": "device binding cleared"})
}

// ListAttendance godoc
// @Summary List attendance records
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date filter (2006-01-02)"
// @Param center_id query string false "Center filter"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} object{data=array,total=int,page=int,limit=int}
// @Router /admin/attendance [get]
func (h *AdminHandler) ListAttendance(c *fiber.Ctx) error {
	filter := bson.M{}
	if date := c.Query("date"); date != "" {
		filter["date"] = date
	}
	if centerHex := c.Query("center_id"); centerHex != "" {
		centerID, err := primitive.ObjectIDFromHex(centerHex)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid center_id"})
		}
		filter["center_id"] = centerID
	}

	page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	rows, total, err := h.attendanceRepo.ListWithEmployee(ctx, filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list attendance"})
	}
	return c.JSON(fiber.Map{"data": rows, "total": total, "page": page, "limit": limit})
}

// TodayAttendance godoc
// @Summary Today's attendance
// @Description Returns today's records joined with employee names; "today" comes from the trusted clock
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AttendanceWithEmployee
// @Router /admin/attendance/today [get]
func (h *AdminHandler) TodayAttendance(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	today := delaycalc.DateString(h.authority.Now())
	rows, err := h.attendanceRepo.TodayWithEmployee(ctx, today)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load today's attendance"})
	}
	return c.JSON(rows)
}

// KioskQR godoc
// @Summary Kiosk QR code for a center
// @Description Encodes the public portal URL preselecting the center, as a base64 PNG
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Center ID"
// @Success 200 {object} object{url=string,qr_code_image=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/centers/{id}/kiosk-qr [get]
func (h *AdminHandler) KioskQR(c *fiber.Ctx) error {
	centerID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid center id"})
	}

	url := h.publicPortalURL + "?center=" + centerID.Hex()
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render QR code"})
	}

	return c.JSON(fiber.Map{
		"url":           url,
		"qr_code_image": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

// ListHolidays godoc
// @Summary List holidays
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Holiday
// @Router /admin/holidays [get]
func (h *AdminHandler) ListHolidays(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	holidays, err := h.holidayRepo.FindAll(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load holidays"})
	}
	return c.JSON(holidays)
}

// CreateHoliday godoc
// @Summary Create a holiday
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param holiday body models.HolidayCreatePayload true "Holiday"
// @Success 201 {object} object{message=string,holiday_id=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Holiday already exists for that date"
// @Router /admin/holidays [post]
func (h *AdminHandler) CreateHoliday(c *fiber.Ctx) error {
	var payload models.HolidayCreatePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}
	if errs := util.ValidateStruct(payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	holiday := &models.Holiday{Date: payload.Date, Name: payload.Name}
	result, err := h.holidayRepo.Create(ctx, holiday)
	if err != nil {
		if err == repository.ErrDuplicateHoliday {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "holiday already exists for that date"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create holiday"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "holiday created", "holiday_id": result.InsertedID})
}

// DeleteHoliday godoc
// @Summary Delete a holiday
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Holiday ID"
// @Success 200 {object} object{message=string}
// @Router /admin/holidays/{id} [delete]
func (h *AdminHandler) DeleteHoliday(c *fiber.Ctx) error {
	holidayID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid holiday id"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := h.holidayRepo.Delete(ctx, holidayID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete holiday"})
	}
	return c.JSON(fiber.Map{"message": "holiday deleted"})
}

// ListTemplates godoc
// @Summary List message templates
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.MessageTemplate
// @Router /admin/templates [get]
func (h *AdminHandler) ListTemplates(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	templates, err := h.templateRepo.FindAll(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load templates"})
	}
	return c.JSON(templates)
}

// UpdateTemplate godoc
// @Summary Update a message template
// @Description Upserts the template content for one outcome type; {minutes} stays a placeholder
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Template type" Enums(check_in, late_check_in, check_out, early_check_out)
// @Param template body models.TemplateUpdatePayload true "New content"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/templates/{type} [put]
func (h *AdminHandler) UpdateTemplate(c *fiber.Ctx) error {
	templateType := c.Params("type")
	switch templateType {
	case models.TemplateCheckIn, models.TemplateLateCheckIn, models.TemplateCheckOut, models.TemplateEarlyCheckOut:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown template type"})
	}

	var payload models.TemplateUpdatePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}
	if errs := util.ValidateStruct(payload); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := h.templateRepo.Upsert(ctx, templateType, payload.Content); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update template"})
	}
	return c.JSON(fiber.Map{"message": "template updated"})
}

// TimeStatus godoc
// @Summary Trusted time status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.TimeStatusResponse
// @Router /admin/time-status [get]
func (h *AdminHandler) TimeStatus(c *fiber.Ctx) error {
	status := h.authority.Status()
	return c.JSON(models.TimeStatusResponse{
		ServerTime: h.authority.Now().UTC().Format(time.RFC3339),
		OffsetMS:   status.Offset.Milliseconds(),
		Synced:     status.Synced,
		Degraded:   status.Degraded,
		LastSource: status.LastSource,
	})
}

// TimeSync godoc
// @Summary Force a time synchronization
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.TimeStatusResponse
// @Failure 502 {object} models.ErrorResponse "All time sources failed"
// @Router /admin/time-sync [post]
func (h *AdminHandler) TimeSync(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 20*time.Second)
	defer cancel()

	if err := h.authority.Synchronize(ctx); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "time synchronization failed", "details": err.Error()})
	}
	return h.TimeStatus(c)
}

// SyncStatus godoc
// @Summary Sync feed status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SyncStatusResponse
// @Router /admin/sync-status [get]
func (h *AdminHandler) SyncStatus(c *fiber.Ctx) error {
	return c.JSON(models.SyncStatusResponse{
		Connected: h.coordinator.Connected(),
		Tables:    h.coordinator.Cache().Counts(),
	})
}

// Refresh godoc
// @Summary Full cache refresh
// @Description Re-fetches every mirrored table from the store, the recovery path for a degraded feed
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,tables=object}
// @Router /admin/refresh [post]
func (h *AdminHandler) Refresh(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	if err := h.coordinator.Refresh(ctx); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "refresh failed", "details": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "cache refreshed", "tables": h.coordinator.Cache().Counts()})
}
