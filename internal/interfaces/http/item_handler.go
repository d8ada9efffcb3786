package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maestral4ik/warehouse1/internal/application/dto"
	"github.com/maestral4ik/warehouse1/internal/application/usecase"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// ItemHandler maneja las peticiones HTTP para items (protegido).
type ItemHandler struct {
	uc  *usecase.ItemUseCase
	log *logger.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *usecase.ItemUseCase, log *logger.Logger) *ItemHandler {
	return &ItemHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear item
// @Description  initial_quantity > 0 registra un movimiento "Ingreso inicial".
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del item"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Name == "" || in.SubcategoryID == "" || in.Unit == "" {
		return validation(c, "name, subcategory_id y unit son requeridos")
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener item por ID
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del item"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar items
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        subcategory_id  query  string  false  "Filtrar por subcategoría"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.Normalize()
	out, err := h.uc.List(c.UserContext(), c.Query("subcategory_id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar datos del item
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del item"
// @Param        body  body  dto.UpdateItemRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar item y su historial
// @Tags         items
// @Security     Bearer
// @Param        id   path  string  true  "ID del item"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History godoc
// @Summary      Bitácora del item
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del item"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.AuditEntryResponse
// @Router       /api/items/{id}/history [get]
func (h *ItemHandler) History(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.Normalize()
	out, err := h.uc.History(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
