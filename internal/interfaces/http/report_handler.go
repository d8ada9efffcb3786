package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// ReportHandler expone el libro mensual (protegido, solo lectura).
type ReportHandler struct {
	uc  *inventory.ReportUseCase
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *inventory.ReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// ItemLedger godoc
// @Summary      Saldo mensual de un item
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true  "ID del item"
// @Param        month  query  string  true  "Mes YYYY-MM"
// @Success      200  {object}  dto.ItemLedgerResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/ledger [get]
func (h *ReportHandler) ItemLedger(c *fiber.Ctx) error {
	out, err := h.uc.ItemLedger(c.UserContext(), c.Params("id"), c.Query("month"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Monthly godoc
// @Summary      Libro mensual por categoría y subcategoría
// @Description  Solo incluye items visibles en el mes; las subcategorías vacías aparecen igual.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        month  query  string  true  "Mes YYYY-MM"
// @Success      200  {object}  dto.MonthlyReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/monthly [get]
func (h *ReportHandler) Monthly(c *fiber.Ctx) error {
	out, err := h.uc.MonthlyReport(c.UserContext(), c.Query("month"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
