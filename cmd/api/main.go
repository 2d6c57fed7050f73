package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/wakatta-dev/workbot/internal/config"
	"github.com/wakatta-dev/workbot/internal/domain/attendance"
	appHTTP "github.com/wakatta-dev/workbot/internal/handler/http"
	"github.com/wakatta-dev/workbot/internal/pkg/database"
	"github.com/wakatta-dev/workbot/internal/pkg/jwt"
	"github.com/wakatta-dev/workbot/internal/pkg/timeutil"
	"github.com/wakatta-dev/workbot/internal/repository/postgresql"
	"github.com/wakatta-dev/workbot/internal/repository/sqlite"
	attendanceService "github.com/wakatta-dev/workbot/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}
	normalizer := timeutil.NewNormalizer(cfg.Work.Timezone)

	var recordStore attendance.RecordStore
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}
		if err := postgresql.EnsureSchema(context.Background(), db); err != nil {
			log.Fatal("Failed to apply schema: ", err)
		}
		recordStore = postgresql.NewRecordStore(db)
	case "sqlite":
		db, err := database.NewSQLiteDB(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatal("Failed to open database: ", err)
		}
		recordStore = sqlite.NewRecordStore(db, normalizer)
	default:
		log.Fatal("Unsupported database driver: ", cfg.Database.Driver)
	}

	calculator := attendanceService.NewCalculator(cfg.Work)
	attendanceSvc := attendanceService.NewAttendanceService(recordStore, calculator, normalizer)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	router := appHTTP.NewRouter(cfg.App.Env, jwtService, attendanceHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
