package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/maestral4ik/warehouse1/internal/application/dto"
	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/ledger"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// MovementHandler maneja movimientos, bajas y correcciones (protegido).
type MovementHandler struct {
	uc  *inventory.MovementUseCase
	log *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{uc: uc, log: log}
}

// Register godoc
// @Summary      Registrar movimiento
// @Description  outgoing y write_off se rechazan (409) si superan lo disponible en el mes de la fecha.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "item_id, date, type, quantity, notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ItemID == "" || in.Type == "" || in.Date.IsZero() {
		return validation(c, "item_id, date y type son requeridos")
	}
	out, err := h.uc.RegisterMovement(c.UserContext(), inventory.MovementInput{
		UserID:   GetUserID(c),
		ItemID:   in.ItemID,
		Date:     in.Date.Time,
		Type:     in.Type,
		Quantity: in.Quantity,
		Notes:    in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar movimiento (admin)
// @Description  No aplica el control de stock; el item se recalcula desde el historial.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateMovement(c.UserContext(), inventory.UpdateMovementInput{
		UserID:     GetUserID(c),
		MovementID: c.Params("id"),
		Date:       in.Date.Ptr(),
		Type:       in.Type,
		Quantity:   in.Quantity,
		Notes:      in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar movimiento (admin)
// @Tags         movements
// @Security     Bearer
// @Param        id   path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteMovement(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByItem godoc
// @Summary      Historial de movimientos de un item
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del item"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD o DD.MM.YYYY)"
// @Param        to      query  string  false  "Hasta (inclusive)"
// @Param        month   query  string  false  "Mes YYYY-MM (alternativa a from/to)"
// @Param        type    query  string  false  "Tipos separados por coma"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/items/{id}/movements [get]
func (h *MovementHandler) ListByItem(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.Normalize()
	filter := repository.MovementFilter{Limit: page.Limit, Offset: page.Offset}

	if m := c.Query("month"); m != "" {
		month, err := ledger.ParseMonth(m)
		if err != nil {
			return respondError(c, h.log, err)
		}
		from, to := month.FirstDay(time.UTC), month.LastDay(time.UTC)
		filter.From, filter.To = &from, &to
	}
	var err error
	if filter.From, err = dateQuery(c, "from", filter.From); err != nil {
		return validation(c, err.Error())
	}
	if filter.To, err = dateQuery(c, "to", filter.To); err != nil {
		return validation(c, err.Error())
	}
	if raw := c.Query("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			filter.Types = append(filter.Types, entity.MovementType(strings.TrimSpace(t)))
		}
	}

	out, err := h.uc.ListMovements(c.UserContext(), c.Params("id"), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// WriteOff godoc
// @Summary      Dar de baja unidades en un mes
// @Description  Sin fecha: hoy si es el mes actual, último día si es pasado, primer día si es futuro.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del item"
// @Param        body  body  dto.WriteOffRequest  true  "month, quantity, reason"
// @Success      201   {object}  dto.WriteOffResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/write-offs [post]
func (h *MovementHandler) WriteOff(c *fiber.Ctx) error {
	var in dto.WriteOffRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.WriteOff(c.UserContext(), inventory.WriteOffInput{
		UserID:   GetUserID(c),
		ItemID:   c.Params("id"),
		Month:    in.Month,
		Quantity: in.Quantity,
		Date:     in.Date.Ptr(),
		Reason:   in.Reason,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CorrectQuantity godoc
// @Summary      Corregir cantidad actual (admin)
// @Description  Agrega un movimiento compensatorio; no edita el historial.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID del item"
// @Param        body  body  dto.QuantityCorrectionRequest  true  "quantity, reason"
// @Success      200   {object}  dto.QuantityCorrectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/quantity-corrections [post]
func (h *MovementHandler) CorrectQuantity(c *fiber.Ctx) error {
	var in dto.QuantityCorrectionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CorrectQuantity(c.UserContext(), inventory.CorrectionInput{
		UserID:      GetUserID(c),
		ItemID:      c.Params("id"),
		NewQuantity: in.Quantity,
		Reason:      in.Reason,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// dateQuery lee un parámetro de fecha opcional; sin valor devuelve def.
func dateQuery(c *fiber.Ctx, key string, def *time.Time) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	t, err := dto.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	t = ledger.Day(t)
	return &t, nil
}
