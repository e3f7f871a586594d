package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/metrics"
	"github.com/shrimpsizemoose/qcm/internal/models"
)

func (h *Handler) ContactForm(c *gin.Context) {
	h.render(c, http.StatusOK, "contact", gin.H{"Title": "Contact"})
}

func (h *Handler) Contact(c *gin.Context) {
	var msg models.ContactMessage
	if err := c.ShouldBind(&msg); err != nil {
		h.redirectWithFlash(c, "/contact", "error", "Veuillez remplir tous les champs.")
		return
	}
	msg.Normalize()
	if err := msg.Validate(); err != nil {
		logger.Debug.Printf("Rejected contact form: %v", err)
		metrics.ContactMessagesTotal.WithLabelValues("invalid").Inc()
		h.redirectWithFlash(c, "/contact", "error", "Veuillez remplir tous les champs avec une adresse email valide.")
		return
	}

	if err := h.service.Mailer.SendContact(c.Request.Context(), &msg); err != nil {
		metrics.ContactMessagesTotal.WithLabelValues("failed").Inc()
		h.redirectWithFlash(c, "/contact", "error", "Erreur lors de l'envoi du message. Veuillez réessayer plus tard.")
		return
	}

	metrics.ContactMessagesTotal.WithLabelValues("sent").Inc()
	h.redirectWithFlash(c, "/contact", "success", "Message envoyé avec succès ! Merci pour votre message.")
}
