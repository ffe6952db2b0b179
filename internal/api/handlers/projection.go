package handlers

import (
	"fmt"
	"log"
	"net/http"

	"mining-pnl/internal/analysis"
	"mining-pnl/internal/api/models"
	"mining-pnl/internal/data"
	"mining-pnl/internal/projection"

	"github.com/gin-gonic/gin"
)

// ProjectionHandler handles projection requests
type ProjectionHandler struct {
	dir    ReferenceDir
	tables *data.TableCache
	engine *projection.Engine
}

// NewProjectionHandler creates a new projection handler. tables may be nil.
func NewProjectionHandler(dir ReferenceDir, tables *data.TableCache) *ProjectionHandler {
	return &ProjectionHandler{dir: dir, tables: tables, engine: projection.New()}
}

// RunProjection handles POST /api/v1/projections
func (h *ProjectionHandler) RunProjection(c *gin.Context) {
	var req models.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	cfg := req.Config
	for i := range cfg.Fleets {
		p, err := h.dir.Resolve(fmt.Sprintf("fleets[%d].source_csv", i), cfg.Fleets[i].SourceCSV)
		if err != nil {
			writeError(c, "ProjectionHandler", err)
			return
		}
		cfg.Fleets[i].SourceCSV = p
	}

	in, err := cfg.Inputs(h.tables)
	if err != nil {
		writeError(c, "ProjectionHandler", err)
		return
	}
	res, err := h.engine.Run(in)
	if err != nil {
		writeError(c, "ProjectionHandler", err)
		return
	}
	if hits, misses := h.tables.Stats(); hits+misses > 0 {
		log.Printf("ProjectionHandler: %d fleets, %d months (table cache %d hits / %d misses)", len(res.Fleets), len(res.Records), hits, misses)
	}

	c.JSON(http.StatusOK, buildResponse(res, req.Options))
}

func buildResponse(res *projection.Result, opts models.ProjectionOptions) models.ProjectionResponse {
	resp := models.ProjectionResponse{
		Status:   "completed",
		Summary:  buildSummary(res),
		Warnings: res.Warnings,
	}
	if opts.IncludeMonthly {
		resp.Monthly = res.Records
	}
	if opts.IncludeAnnual {
		resp.AnnualAccrual = convertAnnual(analysis.AccrualByYear(res))
		resp.AnnualCash = convertAnnual(analysis.CashByYear(res))
	}
	return resp
}

func buildSummary(res *projection.Result) models.ProjectionSummary {
	s := models.ProjectionSummary{Months: len(res.Records), Fleets: res.Fleets}
	if len(res.Records) > 0 {
		s.StartMonth = res.Records[0].Period.Format("2006-01")
		s.EndMonth = res.Records[len(res.Records)-1].Period.Format("2006-01")
	}
	for _, r := range res.Records {
		if r.Operating {
			s.OperatingMonths++
		}
	}
	return s
}

func convertAnnual(rows []analysis.AnnualRow) []models.AnnualRow {
	out := make([]models.AnnualRow, len(rows))
	for i, r := range rows {
		fleets := make([]models.AnnualFleet, len(r.Fleets))
		for j, f := range r.Fleets {
			fleets[j] = models.AnnualFleet{Fleet: f.Fleet, Revenue: f.Revenue.Round(2), PowerCost: f.PowerCost.Round(2)}
		}
		out[i] = models.AnnualRow{
			Year:            r.Year,
			Fleets:          fleets,
			TotalRevenue:    r.TotalRevenue.Round(2),
			TotalPowerCost:  r.TotalPowerCost.Round(2),
			OperatingProfit: r.OperatingProfit.Round(2),
		}
	}
	return out
}
