package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/quiz"
)

const answerFieldPrefix = "question_"

func (h *Handler) Quiz(c *gin.Context) {
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil {
		h.redirectWithFlash(c, "/cours", "error", "Chapitre non valide.")
		return
	}

	questions, err := h.service.Quiz.Questions(c.Request.Context(), chapter)
	switch {
	case errors.Is(err, quiz.ErrInvalidChapter):
		h.redirectWithFlash(c, "/cours", "error", "Chapitre non valide.")
		return
	case errors.Is(err, quiz.ErrNoQuestionsForChapter):
		h.redirectWithFlash(c, "/cours", "error", fmt.Sprintf("Aucune question disponible pour le chapitre %d.", chapter))
		return
	case err != nil:
		h.internalError(c, err)
		return
	}

	data := gin.H{
		"Title":     fmt.Sprintf("QCM chapitre %d", chapter),
		"Number":    chapter,
		"Questions": questions,
	}
	if ch, ok := h.service.Bank.Chapter(chapter); ok {
		data["Chapter"] = ch
	}
	h.render(c, http.StatusOK, "qcm", data)
}

// answersFromForm collects question_<id> fields. Fields with a malformed id
// are ignored.
func answersFromForm(c *gin.Context) map[int64]string {
	answers := make(map[int64]string)
	for key, values := range c.Request.PostForm {
		raw, ok := strings.CutPrefix(key, answerFieldPrefix)
		if !ok || len(values) == 0 {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		answers[id] = values[0]
	}
	return answers
}

func (h *Handler) Submit(c *gin.Context) {
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil {
		h.redirectWithFlash(c, "/cours", "error", "Chapitre non valide.")
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		h.redirectWithFlash(c, fmt.Sprintf("/qcm/%d", chapter), "error", "Formulaire invalide.")
		return
	}

	student := identity(c)
	result, err := h.service.Quiz.Submit(c.Request.Context(), student.StudentID, chapter, answersFromForm(c))
	if errors.Is(err, quiz.ErrNoQuestionsForChapter) {
		h.redirectWithFlash(c, "/cours", "error", "Erreur : aucune question trouvée pour ce chapitre.")
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/qcm/%d/resultat/%d", chapter, result.AttemptID))
}

func (h *Handler) Result(c *gin.Context) {
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil {
		h.redirectWithFlash(c, "/cours", "error", "Résultat non trouvé.")
		return
	}
	attemptID, err := strconv.ParseInt(c.Param("attempt"), 10, 64)
	if err != nil {
		h.redirectWithFlash(c, "/cours", "error", "Résultat non trouvé.")
		return
	}

	student := identity(c)
	detail, err := h.service.Quiz.Result(c.Request.Context(), student.StudentID, attemptID)
	if errors.Is(err, quiz.ErrAttemptNotFound) || (err == nil && detail.Attempt.Chapter != chapter) {
		logger.Debug.Printf("Student %d asked for unknown attempt %d", student.StudentID, attemptID)
		h.redirectWithFlash(c, "/cours", "error", "Résultat non trouvé.")
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	correct := 0
	for _, r := range detail.Responses {
		if r.IsCorrect {
			correct++
		}
	}

	data := gin.H{
		"Title":   fmt.Sprintf("Résultat chapitre %d", chapter),
		"Result":  detail,
		"Correct": correct,
	}
	if ch, ok := h.service.Bank.Chapter(chapter); ok {
		data["Chapter"] = ch
	}
	h.render(c, http.StatusOK, "resultat", data)
}

func (h *Handler) Dashboard(c *gin.Context) {
	student := identity(c)
	history, err := h.service.Quiz.History(c.Request.Context(), student.StudentID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.render(c, http.StatusOK, "tableau_de_bord", gin.H{
		"Title":   "Tableau de bord",
		"History": history,
	})
}
