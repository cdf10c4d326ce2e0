package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *handlers) subscribe(c *gin.Context) {
	var req subscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.deps.SubscriberSvc.Subscribe(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "successfully subscribed to the newsletter"})
}

func (h *handlers) issueGuest(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"guestId": h.deps.Guests.NewID()})
}

const defaultMaxUploadBytes = 5 << 20

func (h *handlers) uploadImage(c *gin.Context) {
	if c.Request.ContentLength > h.maxUpload {
		fileTooLarge(c)
		return
	}
	// Chunked bodies carry no length up front.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fileTooLarge(c)
			return
		}
		badRequest(c, "no file uploaded")
		return
	}
	f, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	url, err := h.deps.Images.Save(c.Request.Context(), header.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	h.logger.Printf("http: uploaded image url=%s", url)
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

func fileTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "file too large"})
}
