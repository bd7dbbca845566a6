// Package response centralizes the flat JSON bodies the API speaks:
// payloads are returned as-is, failures are {"error": "..."}.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest sends 400 with an error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err})
}

// NotFound sends 404 with an error message.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, gin.H{"error": err})
}

// Internal sends 500 with a generic error message; details stay in server logs.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err})
}
