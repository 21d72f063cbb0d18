package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	studentRepo "github.com/Sem-Five-Project/edimy/database/repository/student"
	"github.com/Sem-Five-Project/edimy/utils"
)

// StudentAuthMiddleware authenticates a student from the Authorization
// header. The token must be valid and match the hash stored on the account,
// so sign-out revokes outstanding tokens. The stored hash is cached in the
// auth cache to keep repeat requests off the account store; token rotation
// and sign-out invalidate the cached entry.
func StudentAuthMiddleware(students studentRepo.StudentRepository, authCache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		studentID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		presented := utils.HashToken(tokenString)

		if authCache != nil {
			if cached, err := utils.GetCachedAuthTokenHash(authCache, studentID); err == nil {
				if cached != presented {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch or account not found"})
					return
				}
				c.Set("studentID", studentID)
				c.Next()
				return
			}
		}

		stu, err := students.GetByID(c.Request.Context(), studentID)
		if err != nil || stu == nil || stu.AuthToken != presented {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch or account not found"})
			return
		}
		if authCache != nil {
			if err := utils.CacheAuthTokenHash(authCache, stu.ID, stu.AuthToken); err != nil {
				utils.GetLogger().Warn("failed to cache auth token hash", zap.String("studentId", stu.ID), zap.Error(err))
			}
		}

		c.Set("studentID", stu.ID)
		c.Next()
	}
}
