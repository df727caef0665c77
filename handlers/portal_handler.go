package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"attendance-core/models"
	"attendance-core/pkg/apperr"
	util "attendance-core/pkg/utils"
	"attendance-core/repository"
	"attendance-core/service"
)

// Fallbacks when no template row exists for the outcome type.
var defaultTemplates = map[string]string{
	models.TemplateCheckIn:       "Checked in. Have a good shift!",
	models.TemplateLateCheckIn:   "Checked in {minutes} minutes late.",
	models.TemplateCheckOut:      "Checked out. See you tomorrow!",
	models.TemplateEarlyCheckOut: "Checked out {minutes} minutes early.",
}

type PortalHandler struct {
	attendanceService *service.AttendanceService
	centerRepo        repository.CenterRepository
	employeeRepo      repository.EmployeeRepository
	templateRepo      repository.TemplateRepository
	clock             service.TimeSource
	resolver          service.IdentityResolver
}

func NewPortalHandler(
	attendanceService *service.AttendanceService,
	centerRepo repository.CenterRepository,
	employeeRepo repository.EmployeeRepository,
	templateRepo repository.TemplateRepository,
	clock service.TimeSource,
	resolver service.IdentityResolver,
) *PortalHandler {
	return &PortalHandler{
		attendanceService: attendanceService,
		centerRepo:        centerRepo,
		employeeRepo:      employeeRepo,
		templateRepo:      templateRepo,
		clock:             clock,
		resolver:          resolver,
	}
}

// State godoc
// @Summary Portal state
// @Description Returns the active centers, the trusted server time and the caller's resolved network identity
// @Tags Portal
// @Produce json
// @Success 200 {object} object{centers=array,server_time=string,time_trusted=bool,network_identity=string}
// @Failure 500 {object} models.ErrorResponse
// @Router /portal/state [get]
func (h *PortalHandler) State(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	centers, err := h.centerRepo.FindAllActive(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load centers"})
	}

	return c.JSON(fiber.Map{
		"centers":          centers,
		"server_time":      h.clock.Now().UTC().Format(time.RFC3339),
		"time_trusted":     h.clock.Trusted(),
		"network_identity": h.resolver.Resolve(ctx),
	})
}

// DeviceIdentity godoc
// @Summary Mint a device identity
// @Description Issues a fresh device identifier for a client that has none persisted yet
// @Tags Portal
// @Produce json
// @Success 200 {object} object{device_id=string}
// @Router /portal/device-identity [get]
func (h *PortalHandler) DeviceIdentity(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"device_id": service.NewDeviceIdentity()})
}

// EmployeesByCenter godoc
// @Summary Active employees of a center
// @Tags Portal
// @Produce json
// @Param center_id query string true "Center ID"
// @Success 200 {array} models.Employee
// @Failure 400 {object} models.ErrorResponse
// @Router /portal/employees [get]
func (h *PortalHandler) EmployeesByCenter(c *fiber.Ctx) error {
	centerID, err := primitive.ObjectIDFromHex(c.Query("center_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid center_id"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	employees, err := h.employeeRepo.FindActiveByCenter(ctx, centerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load employees"})
	}
	return c.JSON(employees)
}

// CheckIn godoc
// @Summary Check in
// @Description Records the start of the working day after network and device validation
// @Tags Portal
// @Accept json
// @Produce json
// @Param action body models.AttendanceActionPayload true "Check-in request"
// @Success 200 {object} models.ActionOutcome
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ActionOutcome "Security validation failed"
// @Failure 409 {object} models.ActionOutcome "Invalid state transition"
// @Router /portal/check-in [post]
func (h *PortalHandler) CheckIn(c *fiber.Ctx) error {
	centerID, employeeID, deviceID, ok := h.parseAction(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	result, err := h.attendanceService.CheckIn(ctx, centerID, employeeID, deviceID)
	if err != nil {
		return h.renderFailure(c, err)
	}

	templateType := models.TemplateCheckIn
	if result.DelayMinutes > 0 {
		templateType = models.TemplateLateCheckIn
	}
	delay := result.DelayMinutes
	return c.JSON(models.ActionOutcome{
		Kind:         models.OutcomeSuccess,
		Message:      h.renderTemplate(ctx, templateType, result.DelayMinutes),
		Status:       result.Status,
		DelayMinutes: &delay,
		TimeTrusted:  result.TimeTrusted,
	})
}

// CheckOut godoc
// @Summary Check out
// @Description Records the end of the working day; security is re-validated
// @Tags Portal
// @Accept json
// @Produce json
// @Param action body models.AttendanceActionPayload true "Check-out request"
// @Success 200 {object} models.ActionOutcome
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ActionOutcome "Security validation failed"
// @Failure 409 {object} models.ActionOutcome "Invalid state transition"
// @Router /portal/check-out [post]
func (h *PortalHandler) CheckOut(c *fiber.Ctx) error {
	centerID, employeeID, deviceID, ok := h.parseAction(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	result, err := h.attendanceService.CheckOut(ctx, centerID, employeeID, deviceID)
	if err != nil {
		return h.renderFailure(c, err)
	}

	templateType := models.TemplateCheckOut
	if result.EarlyDepartureMinutes > 0 {
		templateType = models.TemplateEarlyCheckOut
	}
	early := result.EarlyDepartureMinutes
	return c.JSON(models.ActionOutcome{
		Kind:                  models.OutcomeSuccess,
		Message:               h.renderTemplate(ctx, templateType, result.EarlyDepartureMinutes),
		Status:                result.Status,
		EarlyDepartureMinutes: &early,
		TimeTrusted:           result.TimeTrusted,
	})
}

// parseAction validates the action payload; on failure it writes the 400
// response itself and reports ok=false.
func (h *PortalHandler) parseAction(c *fiber.Ctx) (centerID, employeeID primitive.ObjectID, deviceID string, ok bool) {
	var payload models.AttendanceActionPayload
	if err := c.BodyParser(&payload); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
		return centerID, employeeID, "", false
	}
	if errs := util.ValidateStruct(payload); errs != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
		return centerID, employeeID, "", false
	}

	centerID, err := primitive.ObjectIDFromHex(payload.CenterID)
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid center_id"})
		return centerID, employeeID, "", false
	}
	employeeID, err = primitive.ObjectIDFromHex(payload.EmployeeID)
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid employee_id"})
		return centerID, employeeID, "", false
	}
	return centerID, employeeID, payload.DeviceID, true
}

// renderFailure maps the error taxonomy onto HTTP statuses. Security and
// state messages are shown verbatim to the operator.
func (h *PortalHandler) renderFailure(c *fiber.Ctx, err error) error {
	switch {
	case apperr.IsSecurity(err):
		return c.Status(fiber.StatusForbidden).JSON(models.ActionOutcome{
			Kind:    models.OutcomeSecurityError,
			Message: err.Error(),
		})
	case apperr.IsState(err):
		return c.Status(fiber.StatusConflict).JSON(models.ActionOutcome{
			Kind:    models.OutcomeStateError,
			Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "attendance action failed", "details": err.Error()})
	}
}

func (h *PortalHandler) renderTemplate(ctx context.Context, templateType string, minutes int) string {
	content := defaultTemplates[templateType]
	if template, err := h.templateRepo.FindByType(ctx, templateType); err == nil && template != nil {
		content = template.Content
	}
	return strings.ReplaceAll(content, "{minutes}", strconv.Itoa(minutes))
}
