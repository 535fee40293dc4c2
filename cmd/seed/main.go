package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"

	"learnflix/pkg/config"
	"learnflix/pkg/database"
	"learnflix/pkg/logger"
	"learnflix/pkg/models"
	"learnflix/pkg/s3"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	username string
	password string
	role     models.UserRole
}

func main() {
	var (
		inviteCode = flag.String("invite-code", "TEACH-2026", "teacher invite code to register")
		withVideo  = flag.Bool("video", true, "upload a demo lesson to object storage")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(context.Background(), cfg, db, *inviteCode, *withVideo, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(ctx context.Context, cfg *config.Config, db *gorm.DB, inviteCode string, withVideo bool, log *logger.Logger) error {
	users := []seedUser{
		{"admin@learnflix.test", "admin", "admin12345", models.RoleAdmin},
		{"teacher@learnflix.test", "ms_rivera", "password123", models.RoleTeacher},
		{"alice@learnflix.test", "alice", "password123", models.RoleStudent},
		{"bob@learnflix.test", "bob", "password123", models.RoleStudent},
	}

	ids := make(map[string]string, len(users))
	for _, u := range users {
		id, err := ensureUser(db, u, log)
		if err != nil {
			return err
		}
		ids[u.username] = id
	}

	if err := ensureInviteCode(db, inviteCode, log); err != nil {
		return err
	}

	if !withVideo {
		return nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}
	return ensureDemoVideo(ctx, db, s3Client, ids["ms_rivera"], log)
}

func ensureUser(db *gorm.DB, u seedUser, log *logger.Logger) (string, error) {
	var existing models.User
	err := db.Where("email = ? OR username = ?", u.email, u.username).First(&existing).Error
	if err == nil {
		log.Info("User %s already exists, skipping", u.username)
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up %s: %w", u.username, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    u.email,
		Username: u.username,
		Password: string(hashedPassword),
		Role:     u.role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		return "", fmt.Errorf("failed to create user %s: %w", u.username, err)
	}

	log.Info("Created %s: %s (%s)", u.role, u.username, u.email)
	return user.ID, nil
}

func ensureInviteCode(db *gorm.DB, code string, log *logger.Logger) error {
	hash := models.HashInviteCode(code)

	var count int64
	if err := db.Model(&models.TeacherInviteCode{}).Where("code_hash = ?", hash).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Invite code already registered, skipping")
		return nil
	}

	if err := db.Create(&models.TeacherInviteCode{CodeHash: hash, IsActive: true}).Error; err != nil {
		return fmt.Errorf("failed to create invite code: %w", err)
	}
	log.Info("Registered teacher invite code %s", code)
	return nil
}

func ensureDemoVideo(ctx context.Context, db *gorm.DB, s3Client *s3.Client, teacherID string, log *logger.Logger) error {
	const title = "Welcome to Learnflix"

	var count int64
	if err := db.Model(&models.Video{}).Where("teacher_id = ? AND title = ?", teacherID, title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Demo video already exists, skipping")
		return nil
	}

	key := fmt.Sprintf("%s/welcome.mp4", teacherID)
	// Not a playable file; enough for signed URLs to resolve against a real object.
	placeholder := bytes.NewReader([]byte("learnflix demo lesson"))
	if err := s3Client.UploadFile(ctx, key, placeholder, "video/mp4"); err != nil {
		return err
	}

	video := &models.Video{
		TeacherID:       teacherID,
		Title:           title,
		Description:     "A short tour of the platform",
		Category:        "general",
		VideoURL:        key,
		QualityStandard: true,
	}
	if err := db.Create(video).Error; err != nil {
		return fmt.Errorf("failed to create demo video: %w", err)
	}

	log.Info("Created demo video %s (%s)", video.ID, key)
	return nil
}
