package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-registration/internal/models"
)

// Local development helper: rebuilds the schema from the bun models and
// seeds a small menu. Production schemas go through migrations/.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set")
	}

	ctx := context.Background()

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Dropping tables...")
	dropTables(ctx, db)

	log.Println("Creating tables...")
	createTables(ctx, db)

	log.Println("Seeding sample data...")
	seedData(ctx, db)

	log.Println("✅ Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.OrderItem)(nil), (*models.MenuItem)(nil), (*models.User)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.User)(nil), (*models.MenuItem)(nil), (*models.OrderItem)(nil)}
	for _, m := range tables {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("❌ Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	menu := []models.MenuItem{
		{ID: "menu-latte", Name: "Latte", Price: 4.99, Available: true},
		{ID: "menu-croissant", Name: "Croissant", Price: 3.99, Available: true},
		{ID: "menu-cold-brew", Name: "Cold Brew", Price: 5.49, Available: true},
	}
	_, _ = db.NewInsert().Model(&menu).Exec(ctx)

	users := []models.User{
		{ID: "user001", Name: "Alice Wonderland", Email: "alice@example.com", Registered: true, CreatedAt: time.Now()},
	}
	_, _ = db.NewInsert().Model(&users).Exec(ctx)
}
