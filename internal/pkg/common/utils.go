package common

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// HashString 計算字符串的 SHA-256 哈希值
func HashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// WriteError 將錯誤轉換為統一的錯誤響應
func WriteError(c *gin.Context, err error) {
	if IsValidationError(err) {
		c.JSON(ErrInvalidRequest.Status, ErrorResponse{
			Code:    ErrInvalidRequest.Code,
			Message: err.Error(),
		})
		return
	}

	ce, ok := AsCustomError(err)
	if !ok {
		ce = ErrInternalError
	}

	resp := ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	// 僅在 debug 模式揭露底層錯誤
	if gin.IsDebugging() && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}

	c.JSON(ce.Status, resp)
}
