package api

import (
	"net/http"
	"strconv"
	"time"

	"excursion-catalog/internal/catalog"
	"excursion-catalog/internal/domain"
	"excursion-catalog/internal/render"

	"github.com/gin-gonic/gin"
)

var categoryTitles = map[domain.Category]string{
	domain.CategorySochi:    "Сочи",
	domain.CategoryAbkhazia: "Абхазия",
}

type categoryInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

type statusResponse struct {
	Loading       bool       `json:"loading"`
	Error         string     `json:"error,omitempty"`
	Count         int        `json:"count"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	LoadedAtHuman string     `json:"loaded_at_human,omitempty"`
}

// ensureLoaded triggers the one-time catalog load. A failed load answers
// 503 with the stored message; the next request tries again.
func (s *Server) ensureLoaded(c *gin.Context) {
	if err := s.store.Load(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": s.store.State().ErrorMessage()})
		return
	}
	c.Next()
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.store.State()
	resp := statusResponse{
		Loading: st.Loading,
		Error:   st.ErrorMessage(),
		Count:   st.Count,
	}
	if !st.LoadedAt.IsZero() {
		at := st.LoadedAt
		resp.LoadedAt = &at
		resp.LoadedAtHuman = render.Date(at)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleList(c *gin.Context) {
	items, ok := s.store.ByCategory().Get(domain.Category(c.Query("category")))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) lookup(c *gin.Context) (domain.Excursion, bool) {
	ex, ok := s.store.FindByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "excursion not found"})
	}
	return ex, ok
}

func (s *Server) handleGet(c *gin.Context) {
	if ex, ok := s.lookup(c); ok {
		c.JSON(http.StatusOK, ex)
	}
}

func (s *Server) handleGetHTML(c *gin.Context) {
	ex, ok := s.lookup(c)
	if !ok {
		return
	}
	out, err := render.HTML(ex)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
}

func (s *Server) handleCategories(c *gin.Context) {
	p := s.store.ByCategory()
	out := []categoryInfo{{ID: "all", Title: "Все", Count: len(p.All)}}
	for _, cat := range domain.Categories {
		items, _ := p.Get(cat)
		out = append(out, categoryInfo{ID: string(cat), Title: categoryTitles[cat], Count: len(items)})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePopular(c *gin.Context) {
	limit := catalog.DefaultTopLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, s.store.Top(limit))
}
