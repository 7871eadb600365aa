package api

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"github.com/Freeeeeet/advisory_service/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdvisoryService операции бронирования, нужные HTTP-слою
type AdvisoryService interface {
	CreateAdvisory(ctx context.Context, in service.CreateAdvisoryInput) (*model.Advisory, error)
	UpdateAdvisoryStatus(ctx context.Context, advisoryID int64, status string, responseMessage *string) (*model.Advisory, error)
	DeleteAdvisory(ctx context.Context, advisoryID int64) error
	GetProgrammerStats(ctx context.Context, programmerID int64) (*model.AdvisoryStats, error)
	GetUserStats(ctx context.Context, userID int64) (*model.AdvisoryStats, error)
	ListByProgrammer(ctx context.Context, programmerID int64) ([]*model.Advisory, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Advisory, error)
	ListAll(ctx context.Context) ([]*model.Advisory, error)
}

// ScheduleService операции со слотами, нужные HTTP-слою
type ScheduleService interface {
	CreateSlot(ctx context.Context, in service.CreateSlotInput) (*model.Slot, error)
	ListAvailable(ctx context.Context, programmerID int64) ([]*model.Slot, error)
	ListAll(ctx context.Context) ([]*model.Slot, error)
	DeleteSlot(ctx context.Context, slotID int64) error
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name+" format")
	}
	return id, nil
}

// newValidator называет поля в ошибках так же, как они приходят в JSON
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func parseBody(c *fiber.Ctx, validate *validator.Validate, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	return validate.Struct(out)
}

type AdvisoryHandler struct {
	advisories AdvisoryService
	validate   *validator.Validate
}

func NewAdvisoryHandler(advisories AdvisoryService) *AdvisoryHandler {
	return &AdvisoryHandler{
		advisories: advisories,
		validate:   newValidator(),
	}
}

func (h *AdvisoryHandler) Create(c *fiber.Ctx) error {
	var req CreateAdvisoryRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	in := service.CreateAdvisoryInput{
		ProgrammerID: req.ProgrammerID,
		UserID:       req.UserID,
		SlotID:       req.ScheduleID,
		Message:      req.Message,
		Time:         req.Time,
		Modality:     req.Modality,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		}
		in.Date = &date
	}

	advisory, err := h.advisories.CreateAdvisory(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toAdvisoryResponse(advisory))
}

func (h *AdvisoryHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var response *string
	if c.Context().QueryArgs().Has("responseMessage") {
		msg := c.Query("responseMessage")
		response = &msg
	}

	advisory, err := h.advisories.UpdateAdvisoryStatus(c.UserContext(), id, c.Query("status"), response)
	if err != nil {
		return err
	}

	return c.JSON(toAdvisoryResponse(advisory))
}

func (h *AdvisoryHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.advisories.DeleteAdvisory(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdvisoryHandler) ListByProgrammer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	list, err := h.advisories.ListByProgrammer(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toAdvisoryResponses(list))
}

func (h *AdvisoryHandler) ListByUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	list, err := h.advisories.ListByUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toAdvisoryResponses(list))
}

func (h *AdvisoryHandler) ListAll(c *fiber.Ctx) error {
	list, err := h.advisories.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(toAdvisoryResponses(list))
}

func (h *AdvisoryHandler) ProgrammerStats(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.advisories.GetProgrammerStats(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(stats.Map())
}

func (h *AdvisoryHandler) UserStats(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.advisories.GetUserStats(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(stats.Map())
}

type ScheduleHandler struct {
	schedules ScheduleService
	validate  *validator.Validate
}

func NewScheduleHandler(schedules ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		validate:  newValidator(),
	}
}

func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	var req CreateSlotRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
	}

	slot, err := h.schedules.CreateSlot(c.UserContext(), service.CreateSlotInput{
		ProgrammerID: req.ProgrammerID,
		Date:         date,
		Time:         req.Time,
		EndTime:      req.EndTime,
		Modality:     req.Modality,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toSlotResponse(slot))
}

func (h *ScheduleHandler) ListAll(c *fiber.Ctx) error {
	slots, err := h.schedules.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(toSlotResponses(slots))
}

func (h *ScheduleHandler) ListAvailable(c *fiber.Ctx) error {
	id, err := paramID(c, "programmerId")
	if err != nil {
		return err
	}

	slots, err := h.schedules.ListAvailable(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toSlotResponses(slots))
}

func (h *ScheduleHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.schedules.DeleteSlot(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
