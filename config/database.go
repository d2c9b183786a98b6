package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lab-request-api/models"
)

var DB *gorm.DB

func InitDB() {
	var err error

	// Get database credentials from environment variables
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbDatabase := os.Getenv("DB_DATABASE")
	dbUsername := os.Getenv("DB_USERNAME")
	dbPassword := os.Getenv("DB_PASSWORD")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbUsername,
		dbPassword,
		dbHost,
		dbPort,
		dbDatabase,
	)

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	debugSQL := strings.ToLower(os.Getenv("DEBUG_SQL"))

	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if environment == "production" && debugSQL != "true" {
		logLevel = logger.Warn
	}

	config := &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	}

	DB, err = gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connected successfully")
}

// RunMigrations applies the schema and seeds the notification catalog. It is
// idempotent and runs once at startup, before the service accepts traffic.
func RunMigrations() error {
	if err := DB.AutoMigrate(
		&models.Company{},
		&models.Department{},
		&models.RequestCategory{},
		&models.User{},
		&models.TestType{},
		&models.LabRequest{},
		&models.TestAssignment{},
		&models.NotificationEventType{},
		&models.NotificationTemplate{},
		&models.NotificationRule{},
		&models.Notification{},
		&models.SmtpConfig{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := seedEventTypes(DB); err != nil {
		return fmt.Errorf("seed event types: %w", err)
	}
	if err := seedTemplatesAndRules(DB); err != nil {
		return fmt.Errorf("seed templates and rules: %w", err)
	}

	log.Println("Migrations applied")
	return nil
}
