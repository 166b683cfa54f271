package handler

import (
	"github.com/gin-gonic/gin"

	"classroom-timetable/internal/api/middleware"
	"classroom-timetable/internal/policy"
	"classroom-timetable/pkg/jwt"
	"classroom-timetable/pkg/response"
)

// MustGetActor 从 Gin 上下文中安全提取认证中间件注入的 Actor。
// 未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetActor(c *gin.Context) (policy.Actor, bool) {
	v, exists := c.Get(middleware.ActorKey)
	if !exists {
		response.Unauthorized(c, 10002, "Not authorized")
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	if !ok || actor.ID == "" {
		response.Unauthorized(c, 10002, "Not authorized")
		return policy.Actor{}, false
	}
	return actor, true
}

// GetClaims 提取当前 Access Token 的声明，不存在时返回 nil
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(middleware.ClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}
