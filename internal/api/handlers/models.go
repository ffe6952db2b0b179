package handlers

import (
	"log"
	"net/http"

	"mining-pnl/internal/api/models"
	"mining-pnl/internal/data"
	"mining-pnl/internal/network"
	"mining-pnl/internal/spec"

	"github.com/gin-gonic/gin"
)

// ModelsHandler serves reference-table contents
type ModelsHandler struct {
	dir    ReferenceDir
	tables *data.TableCache
}

// NewModelsHandler creates a new models handler. tables may be nil.
func NewModelsHandler(dir ReferenceDir, tables *data.TableCache) *ModelsHandler {
	log.Printf("ModelsHandler: Using reference directory: %s", dir)
	return &ModelsHandler{dir: dir, tables: tables}
}

// ListModels handles GET /api/v1/models. Without ?source it lists the
// available tables.
func (h *ModelsHandler) ListModels(c *gin.Context) {
	var q models.ModelsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}
	if q.Source == "" {
		h.listSources(c)
		return
	}

	path, err := h.dir.Resolve("source", q.Source)
	if err != nil {
		writeError(c, "ModelsHandler", err)
		return
	}
	t, err := h.tables.Load(path)
	if err != nil {
		writeError(c, "ModelsHandler", err)
		return
	}
	specs, err := spec.ListModels(t)
	if err != nil {
		writeError(c, "ModelsHandler", err)
		return
	}

	out := make([]models.ModelInfo, len(specs))
	for i, s := range specs {
		out[i] = models.ModelInfo{
			Model:        s.Model,
			Hashrate:     s.Hashrate,
			HashrateUnit: string(s.HashrateUnit),
			PowerW:       s.PowerW,
			Display:      network.Humanise(s.HashrateHs()),
		}
	}
	c.JSON(http.StatusOK, gin.H{"source": q.Source, "models": out, "count": len(out)})
}

func (h *ModelsHandler) listSources(c *gin.Context) {
	entries, err := h.dir.Sources()
	if err != nil {
		log.Printf("ModelsHandler: Failed to read reference directory %s: %v", h.dir, err)
		writeError(c, "ModelsHandler", err)
		return
	}
	sources := []models.SourceInfo{}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		sources = append(sources, models.SourceInfo{Name: e.Name(), Size: info.Size()})
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources, "count": len(sources)})
}
