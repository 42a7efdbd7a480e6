package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wondash/server/config"
	"wondash/server/internal/aptnames"
	"wondash/server/internal/dashboard"
	"wondash/server/internal/database"
	"wondash/server/internal/favorites"
	"wondash/server/internal/market"
	"wondash/server/internal/models"
	"wondash/server/internal/molit"
	"wondash/server/internal/news"
	"wondash/server/internal/report"
)

var lawdCdPattern = regexp.MustCompile(`^\d{5}$`)

// Deps holds the services the handler serves from. Aggregator and Reports may
// be nil when their credentials are absent; the matching endpoints then answer
// 503 instead of failing mid-request.
type Deps struct {
	State      *dashboard.State
	Summary    *dashboard.SummaryBuilder
	Aggregator *molit.Aggregator
	Names      *aptnames.Index
	Upbit      *market.UpbitClient
	News       *news.Client
	Reports    *report.Generator
	Archive    *database.Archive
	Months     int
}

type Handler struct {
	logger *logrus.Logger
	deps   Deps
}

func NewHandler(deps Deps, logger *logrus.Logger) *Handler {
	if deps.Months <= 0 {
		deps.Months = 12
	}
	return &Handler{logger: logger, deps: deps}
}

// lawdCdParam validates the region code query parameter. A bad code answers
// the request itself and returns false.
func (h *Handler) lawdCdParam(c *gin.Context) (string, bool) {
	lawdCd := c.Query("lawd_cd")
	if !lawdCdPattern.MatchString(lawdCd) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lawd_cd must be a 5-digit district code"})
		return "", false
	}
	return lawdCd, true
}

// requireRegistry answers 503 when the registry credential is not configured.
func (h *Handler) requireRegistry(c *gin.Context) bool {
	if h.deps.Aggregator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transaction registry credential is not configured"})
		return false
	}
	return true
}

// GetSummary returns the metric grid in the persisted display order.
func (h *Handler) GetSummary(c *gin.Context) {
	metrics := h.deps.Summary.Build(c.Request.Context(), h.deps.State)
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

// GetTransactions returns the trailing transaction window for one region,
// optionally filtered to a single complex.
func (h *Handler) GetTransactions(c *gin.Context) {
	if !h.requireRegistry(c) {
		return
	}
	lawdCd, ok := h.lawdCdParam(c)
	if !ok {
		return
	}

	months := h.deps.Months
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 24 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be between 1 and 24"})
			return
		}
		months = parsed
	}

	period := h.deps.Aggregator.FetchPeriod(c.Request.Context(), lawdCd, months, h.deps.State.Token(lawdCd))

	rows := period.Rows
	if apt := c.Query("apt"); apt != "" {
		filtered := make([]models.TransactionRecord, 0, len(rows))
		for _, row := range rows {
			if row.AptName == apt {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	models.SortByDateDesc(rows)

	c.JSON(http.StatusOK, gin.H{
		"lawd_cd": lawdCd,
		"rows":    rows,
		"months":  period.Months,
	})
}

// GetAptNames returns every complex name ever observed for a region.
func (h *Handler) GetAptNames(c *gin.Context) {
	lawdCd, ok := h.lawdCdParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lawd_cd": lawdCd,
		"names":   h.deps.Names.Get(lawdCd),
	})
}

type refreshRequest struct {
	LawdCd string `json:"lawd_cd" binding:"required"`
}

// RefreshRegion bumps the cache invalidation token for one region so its
// months are fetched fresh on next access.
func (h *Handler) RefreshRegion(c *gin.Context) {
	if !h.requireRegistry(c) {
		return
	}

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lawd_cd is required"})
		return
	}
	if !lawdCdPattern.MatchString(req.LawdCd) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lawd_cd must be a 5-digit district code"})
		return
	}

	token := h.deps.State.Refresh(req.LawdCd)
	c.JSON(http.StatusOK, gin.H{"lawd_cd": req.LawdCd, "token": token})
}

// GetRecentSales returns the latest archived transactions for a region.
func (h *Handler) GetRecentSales(c *gin.Context) {
	lawdCd, ok := h.lawdCdParam(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	sales, err := h.deps.Archive.RecentSales(lawdCd, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent sales")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent sales"})
		return
	}
	c.JSON(http.StatusOK, sales)
}

// GetRegionStats returns archive-wide statistics for a region.
func (h *Handler) GetRegionStats(c *gin.Context) {
	lawdCd, ok := h.lawdCdParam(c)
	if !ok {
		return
	}

	stats, err := h.deps.Archive.RegionStats(lawdCd)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get region stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get region stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetFavorites lists the pinned apartment complexes.
func (h *Handler) GetFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.State.Config().FavoriteApts)
}

type favoriteRequest struct {
	LawdCd     string `json:"lawd_cd" binding:"required"`
	RegionName string `json:"region_name"`
	AptName    string `json:"apt_name" binding:"required"`
}

// AddFavorite pins a new complex. A duplicate (region, complex) pair is a 409.
func (h *Handler) AddFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lawd_cd and apt_name are required"})
		return
	}
	if !lawdCdPattern.MatchString(req.LawdCd) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lawd_cd must be a 5-digit district code"})
		return
	}

	if req.RegionName == "" {
		if d := config.GetDistrictByCode(req.LawdCd); d != nil {
			req.RegionName = d.Sigungu
		}
	}

	entry, err := h.deps.State.AddFavorite(req.LawdCd, req.RegionName, req.AptName)
	if err != nil {
		if errors.Is(err, favorites.ErrDuplicateFavorite) {
			c.JSON(http.StatusConflict, gin.H{"error": "favorite already exists"})
			return
		}
		h.logger.WithError(err).Error("Failed to add favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteFavorite removes a favorite by its stable id.
func (h *Handler) DeleteFavorite(c *gin.Context) {
	id := c.Param("id")
	if err := h.deps.State.RemoveFavorite(id); err != nil {
		if errors.Is(err, favorites.ErrFavoriteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to remove favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// DeleteFavoriteByIndex removes a favorite by its visible list position, for
// clients that predate stable ids.
func (h *Handler) DeleteFavoriteByIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Query("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}

	if err := h.deps.State.RemoveFavoriteAt(index); err != nil {
		if errors.Is(err, favorites.ErrFavoriteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to remove favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

type orderRequest struct {
	Order []string `json:"order"`
}

// UpdateOrder applies a user reordering of the metric grid. The submitted
// order is reconciled against the live keys, so a stale client gets back the
// corrected sequence rather than an error.
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be a list of display keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": h.deps.State.SetOrder(req.Order)})
}

// GetDistricts returns the built-in district catalog.
func (h *Handler) GetDistricts(c *gin.Context) {
	c.JSON(http.StatusOK, config.SupportedDistricts)
}

// GetMarkets returns the KRW-quoted coin markets.
func (h *Handler) GetMarkets(c *gin.Context) {
	markets := h.deps.Upbit.Markets(c.Request.Context())
	if markets == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch market list"})
		return
	}
	c.JSON(http.StatusOK, markets)
}

// SearchNews returns up to five headlines for a keyword.
func (h *Handler) SearchNews(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"keyword": keyword,
		"items":   h.deps.News.Search(c.Request.Context(), keyword),
	})
}

// ListModels returns the AI models available for report generation.
func (h *Handler) ListModels(c *gin.Context) {
	if h.deps.Reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI report credential is not configured"})
		return
	}

	names, err := h.deps.Reports.Models(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list AI models")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list AI models"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": names})
}

type reportRequest struct {
	Model string `json:"model"`
}

// GenerateReport renders the AI investment report from the current metric
// grid. A model named in the request becomes the new preferred model.
func (h *Handler) GenerateReport(c *gin.Context) {
	if h.deps.Reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI report credential is not configured"})
		return
	}

	// An empty or absent body is fine; the preferred model applies
	var req reportRequest
	_ = c.ShouldBindJSON(&req)

	model := req.Model
	if model == "" {
		model = h.deps.State.Config().SelectedAIModel
	} else {
		h.deps.State.SetAIModel(model)
	}

	metrics := h.deps.Summary.Build(c.Request.Context(), h.deps.State)
	var b strings.Builder
	for _, m := range metrics {
		b.WriteString("- " + m.Label + ": " + m.Value + " (" + m.Delta + ")\n")
	}

	// Recent archived sales for the favorited regions give the model price
	// levels to reason about
	for _, lawdCd := range h.deps.State.FavoriteRegions() {
		sales, err := h.deps.Archive.RecentSales(lawdCd, 5)
		if err != nil || len(sales) == 0 {
			continue
		}
		b.WriteString("\n[" + lawdCd + " 최근 실거래]\n")
		for _, s := range sales {
			b.WriteString("- " + s.ContractDate + " " + s.AptName + " " +
				strconv.Itoa(s.Price) + "만원 " + strconv.FormatFloat(s.Area, 'f', 2, 64) + "㎡ " +
				s.Floor + "층\n")
		}
	}

	text, err := h.deps.Reports.Generate(c.Request.Context(), model, b.String())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"model": model, "report": text})
}

// GetConfig returns the persisted dashboard configuration.
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.State.Config())
}

type configRequest struct {
	SelectedCoins   []string `json:"selected_coins"`
	SelectedStocks  []string `json:"selected_stocks"`
	CustomStock     string   `json:"custom_stock"`
	SelectedAIModel string   `json:"selected_ai_model"`
}

// UpdateConfig replaces the coin/stock selections and preferred AI model.
// Favorites and ordering have their own endpoints.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.deps.State.SetSelections(req.SelectedCoins, req.SelectedStocks, req.CustomStock)
	if req.SelectedAIModel != "" {
		h.deps.State.SetAIModel(req.SelectedAIModel)
	}
	c.JSON(http.StatusOK, h.deps.State.Config())
}
