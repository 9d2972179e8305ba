package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hyunwoooim-star/ai-market-sub000/anchor"
	"github.com/hyunwoooim-star/ai-market-sub000/sim"
	"github.com/hyunwoooim-star/ai-market-sub000/storage"
)

// Handlers bundles the simulation and anchor surfaces behind the REST API.
type Handlers struct {
	engine  *sim.Engine
	anchors *anchor.Service
	agents  *storage.AgentRepository
	epochs  *storage.EpochRepository
	txs     *storage.TransactionRepository
}

func New(
	engine *sim.Engine,
	anchors *anchor.Service,
	agents *storage.AgentRepository,
	epochs *storage.EpochRepository,
	txs *storage.TransactionRepository,
) *Handlers {
	return &Handlers{
		engine:  engine,
		anchors: anchors,
		agents:  agents,
		epochs:  epochs,
		txs:     txs,
	}
}

const defaultEpochCount = 3

// RunSimulation runs N consecutive epochs (default 3, "single" mode = 1 for
// external cron triggering). It always returns a summary: per-agent failures
// are isolated inside the engine, and a mid-run failure still reports the
// completed prefix.
func (h *Handlers) RunSimulation(c *gin.Context) {
	count := defaultEpochCount
	if c.Query("mode") == "single" {
		count = 1
	} else if raw := c.Query("epochs"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "epochs must be between 1 and 50"})
			return
		}
		count = n
	}

	epochs, err := h.engine.RunEpochs(c.Request.Context(), count)
	if errors.Is(err, sim.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "a simulation run is already in progress"})
		return
	}

	resp := gin.H{
		"requested": count,
		"completed": len(epochs),
		"epochs":    epochs,
	}
	if err != nil {
		resp["error"] = err.Error()
		if len(epochs) == 0 {
			c.JSON(http.StatusInternalServerError, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetAgents returns every agent, wealthiest first.
func (h *Handlers) GetAgents(c *gin.Context) {
	agents, err := h.agents.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load agents"})
		return
	}

	sort.SliceStable(agents, func(i, j int) bool { return agents[i].Balance > agents[j].Balance })
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

// GetEpochs returns recent epochs, newest first.
func (h *Handlers) GetEpochs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	epochs, err := h.epochs.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load epochs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"epochs": epochs})
}

// GetEpoch returns one epoch with its transactions.
func (h *Handlers) GetEpoch(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid epoch number"})
		return
	}

	epoch, err := h.epochs.Get(number)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "epoch not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load epoch"})
		return
	}

	txs, err := h.txs.ByEpoch(number)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"epoch": epoch, "transactions": txs})
}

// AnchorEpoch fingerprints a recorded epoch and commits the hash to the
// external ledger when reachable. Both a ledger-confirmed reference and an
// explicit hash-only status are valid terminal outcomes.
func (h *Handlers) AnchorEpoch(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid epoch number"})
		return
	}

	var body struct {
		Secret string `json:"secret"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anchor request"})
		return
	}

	record, err := h.anchors.Anchor(c.Request.Context(), number, body.Secret)
	if errors.Is(err, anchor.ErrUnauthorized) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid anchor secret"})
		return
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"anchor": record})
}

// GetAnchor verifies one epoch's anchor against current stored state.
func (h *Handlers) GetAnchor(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid epoch number"})
		return
	}

	result, err := h.anchors.Verify(number)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListAnchors summarizes anchoring coverage across recent epochs.
func (h *Handlers) ListAnchors(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	summary, err := h.anchors.CoverageSummary(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build coverage summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
