package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/app"
	"github.com/shrimpsizemoose/qcm/internal/models"
	"github.com/shrimpsizemoose/qcm/internal/render"
)

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

var pages = []string{
	"cours",
	"professeur",
	"detail_cours",
	"chapitre",
	"contact",
	"connexion",
	"inscription",
	"qcm",
	"resultat",
	"tableau_de_bord",
	"404",
}

func loadTemplates(dir string) multitemplate.Render {
	r := multitemplate.NewRenderer()
	layout := filepath.Join(dir, "layout.html")
	for _, page := range pages {
		r.AddFromFilesFuncs(page, render.Funcs(), layout, filepath.Join(dir, page+".html"))
	}
	return r
}

// NewRouter wires every route of the site onto a fresh gin engine.
func NewRouter(service *app.Service) *gin.Engine {
	h := NewHandler(service)
	cfg := service.Config

	router := gin.New()
	router.Use(gin.Recovery(), RequestMetrics(), h.Identify())
	router.HTMLRender = loadTemplates(cfg.Server.TemplatesDir)

	if cfg.Server.StaticDir != "" {
		if _, err := os.Stat(cfg.Server.StaticDir); err == nil {
			router.Static("/static", cfg.Server.StaticDir)
		} else {
			logger.Info.Printf("Static directory %s not found, skipping", cfg.Server.StaticDir)
		}
	}

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", h.Courses)
	router.GET("/cours", h.Courses)
	router.GET("/professeur", h.Teacher)
	router.GET("/detail-cours", h.CourseDetail)

	limited := RateLimiter(cfg.RateLimit.Requests, cfg.RateWindow())
	router.GET("/contact", h.ContactForm)
	router.POST("/contact", limited, h.Contact)
	router.GET("/connexion", h.LoginForm)
	router.POST("/connexion", limited, h.Login)
	router.GET("/inscription", h.RegisterForm)
	router.POST("/inscription", limited, h.Register)
	router.GET("/deconnexion", h.Logout)

	student := router.Group("/", h.RequireStudent())
	student.GET("/chapitre/:chapter", h.Chapter)
	student.GET("/qcm/:chapter", h.Quiz)
	student.POST("/qcm/:chapter/submit", h.Submit)
	student.GET("/qcm/:chapter/resultat/:attempt", h.Result)
	student.GET("/tableau-de-bord", h.Dashboard)

	router.NoRoute(h.NotFound)

	return router
}

func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flash"] = h.popFlash(c)
	data["Student"] = identity(c)
	data["Chapters"] = h.service.Bank.Chapters
	data["Letters"] = models.Letters
	c.HTML(status, page, data)
}

func (h *Handler) internalError(c *gin.Context, err error) {
	logger.Error.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	h.redirectWithFlash(c, "/cours", "error", "Une erreur est survenue, veuillez réessayer.")
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.service.Store.Ping(c.Request.Context()); err != nil {
		logger.Error.Printf("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404", nil)
}
