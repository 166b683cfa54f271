package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"classroom-timetable/internal/model"
	"classroom-timetable/internal/policy"
	apperr "classroom-timetable/pkg/errors"
	"classroom-timetable/pkg/jwt"
	"classroom-timetable/pkg/response"
)

// 认证中间件写入 gin.Context 的键
const (
	ActorKey  = "actor"
	ClaimsKey = "claims"
)

// TokenBlacklist 已吊销 Token 查询（Redis 实现）
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// ActorResolver 按用户 ID 从数据库加载当前用户
type ActorResolver interface {
	ResolveActor(ctx context.Context, id string) (policy.Actor, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 每次请求都从数据库重新加载用户，禁用与删除立即生效。
// blacklist 为 nil 时跳过吊销检查
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "Not authorized, no token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c, 10002, "Not authorized, no token")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseTokenOfType(parts[1], jwt.TokenTypeAccess)
		if err != nil {
			response.Unauthorized(c, 10002, "Not authorized, token invalid")
			c.Abort()
			return
		}

		if blacklist != nil {
			// Redis 出错时降级放行
			if revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
				response.Unauthorized(c, 10002, "Token has been revoked")
				c.Abort()
				return
			}
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), claims.UserID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				response.Unauthorized(c, 10002, "User not found")
			} else {
				response.InternalError(c)
			}
			c.Abort()
			return
		}

		if !actor.IsActive {
			response.Forbidden(c, policy.ErrAccountDisabled.Code, policy.ErrAccountDisabled.Message)
			c.Abort()
			return
		}

		c.Set(ActorKey, actor)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户的角色类别是否在允许列表内（ADMIN_* 统一为 KindAdmin）
func RoleAuth(kinds ...model.RoleKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ActorKey)
		if !exists {
			response.Unauthorized(c, 10002, "Not authorized")
			c.Abort()
			return
		}
		actor, ok := v.(policy.Actor)
		if !ok {
			response.Unauthorized(c, 10002, "Not authorized")
			c.Abort()
			return
		}

		for _, k := range kinds {
			if actor.Role.Kind() == k {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "You are not authorized to perform this action")
		c.Abort()
	}
}
