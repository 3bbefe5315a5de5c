package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetTerminalID extracts the authenticated terminal ID from the Gin context
func GetTerminalID(c *gin.Context) *uuid.UUID {
	terminalIDVal, exists := c.Get("terminal_id")
	if !exists {
		return nil
	}
	terminalID, ok := terminalIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &terminalID
}

// GetTerminalCode extracts the terminal code from the Gin context
func GetTerminalCode(c *gin.Context) string {
	code, exists := c.Get("terminal_code")
	if !exists {
		return ""
	}
	return code.(string)
}
