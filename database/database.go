package database

import (
	"fmt"
	"log"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/anjiri1684/course_marketplace/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), Options())
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

// Options is shared by the server and the test databases.
func Options() *gorm.Config {
	return &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	}
}

func Migrate() {
	if err := AutoMigrate(DB); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lecture{},
		&models.CourseStudent{},
		&models.Order{},
		&models.StudentCourses{},
		&models.StudentCourseItem{},
		&models.PurchaseTask{},
		&models.CourseProgress{},
		&models.LectureProgress{},
	)
}
