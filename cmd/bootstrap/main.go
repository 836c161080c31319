// Package main 一次性初始化：建表并创建首个管理员
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"ui-forge-api/internal/config"
	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 连接数据库
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pgClient.Close()

	// 3. 迁移表结构
	fmt.Println("Running schema migration...")
	if err := pgClient.DB().AutoMigrate(
		&entity.User{},
		&entity.Session{},
		&entity.Turn{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 创建首个管理员
	adminEmail := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@ui-forge.local"
	}
	adminPassword := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123" // 生产环境请务必通过环境变量设置
	}

	userRepo := postgres.NewUserRepository(pgClient)

	exists, err := userRepo.ExistsByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("failed to check admin existence: %v", err)
	}

	if !exists {
		fmt.Printf("Creating admin user: %s...\n", adminEmail)
		admin := entity.NewUser(adminEmail, "System Admin")
		if err := admin.SetPassword(adminPassword); err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatalf("failed to create admin user: %v", err)
		}
		fmt.Println("Admin user created successfully.")
	} else {
		fmt.Printf("Admin user %s already exists.\n", adminEmail)
	}

	fmt.Println("Bootstrap completed successfully.")
}
