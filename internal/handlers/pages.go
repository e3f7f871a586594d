package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Courses(c *gin.Context) {
	h.render(c, http.StatusOK, "cours", gin.H{"Title": "Cours"})
}

func (h *Handler) Teacher(c *gin.Context) {
	h.render(c, http.StatusOK, "professeur", gin.H{"Title": "Le professeur"})
}

func (h *Handler) CourseDetail(c *gin.Context) {
	h.render(c, http.StatusOK, "detail_cours", gin.H{"Title": "Détail du cours"})
}

func (h *Handler) Chapter(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("chapter"))
	if err != nil || number < 1 || number > h.service.Quiz.Chapters() {
		h.redirectWithFlash(c, "/cours", "error", "Chapitre non valide.")
		return
	}
	chapter, ok := h.service.Bank.Chapter(number)
	if !ok {
		h.redirectWithFlash(c, "/cours", "error", "Chapitre non valide.")
		return
	}
	h.render(c, http.StatusOK, "chapitre", gin.H{
		"Title":   chapter.Title,
		"Chapter": chapter,
	})
}
