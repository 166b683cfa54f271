package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"classroom-timetable/config"
	"classroom-timetable/internal/model"
	"classroom-timetable/internal/repository"
	"classroom-timetable/pkg/database"
	applogger "classroom-timetable/pkg/logger"
)

// seedUser 初始化账号
type seedUser struct {
	userID   string
	name     string
	email    string
	password string
	role     model.Role
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("TIMETABLE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log, "seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Seed.SuperAdminPassword == "" {
		logger.Fatal("seed.super_admin_password 未配置")
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	users := []seedUser{{
		userID:   cfg.Seed.SuperAdminUserID,
		name:     "Super Administrator",
		email:    cfg.Seed.SuperAdminEmail,
		password: cfg.Seed.SuperAdminPassword,
		role:     model.RoleSuperAdmin,
	}}
	if cfg.Seed.DemoAdmins {
		if cfg.Seed.DemoPassword == "" {
			logger.Fatal("seed.demo_admins 开启时必须配置 seed.demo_password")
		}
		users = append(users, demoAdmins(cfg.Seed.DemoPassword)...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo := repository.NewRepository(db)
	created := 0
	for _, u := range users {
		ok, err := ensureUser(ctx, repo, u)
		if err != nil {
			logger.Fatal("创建初始账号失败", zap.String("user_id", u.userID), zap.Error(err))
		}
		if ok {
			created++
			logger.Info("已创建账号", zap.String("user_id", u.userID), zap.String("role", u.role.String()))
		} else {
			logger.Info("账号已存在，跳过", zap.String("user_id", u.userID))
		}
	}

	logger.Info("初始化完成", zap.Int("created", created), zap.Int("total", len(users)))
}

// demoAdmins 每个院系一个已审批的演示管理员（CS001, ECE001 ...）
func demoAdmins(password string) []seedUser {
	out := make([]seedUser, 0, len(model.Departments))
	for _, d := range model.Departments {
		lower := strings.ToLower(string(d))
		out = append(out, seedUser{
			userID:   string(d) + "001",
			name:     string(d) + " Department Admin",
			email:    lower + ".admin@timetable.com",
			password: password,
			role:     model.AdminRole(d),
		})
	}
	return out
}

// ensureUser 按 user_id 幂等创建，已存在返回 false
func ensureUser(ctx context.Context, repo *repository.Repository, u seedUser) (bool, error) {
	if _, err := repo.User.GetByUserID(ctx, u.userID); err == nil {
		return false, nil
	} else if !repository.IsNotFound(err) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	user := &model.User{
		UserID:       u.userID,
		Name:         u.name,
		Email:        u.email,
		PasswordHash: string(hash),
		Role:         u.role,
		IsApproved:   true,
		IsActive:     true,
	}
	if err := repo.User.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
