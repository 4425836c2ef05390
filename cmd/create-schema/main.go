package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"dzlegal-backend/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := []struct {
		name string
		sql  string
	}{
		{
			name: "corrections",
			sql: `
CREATE TABLE IF NOT EXISTS corrections (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    schema_version INTEGER NOT NULL DEFAULT 1,
    original_query TEXT NOT NULL,
    corrected_text TEXT NOT NULL,
    lawyer_info TEXT,
    verified BOOLEAN NOT NULL DEFAULT false,
    verdict TEXT NOT NULL DEFAULT '',
    sources JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMP DEFAULT NOW()
);`,
		},
		{
			name: "documents",
			sql: `
CREATE TABLE IF NOT EXISTS documents (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    session_id VARCHAR(255),
    filename VARCHAR(255) NOT NULL,
    mime_type VARCHAR(100) NOT NULL,
    size BIGINT NOT NULL,
    storage_path TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);`,
		},
		{
			name: "research_jobs",
			sql: `
CREATE TABLE IF NOT EXISTS research_jobs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    topic TEXT NOT NULL,
    refs TEXT NOT NULL DEFAULT '',
    status VARCHAR(50) NOT NULL DEFAULT 'pending',
    current_step VARCHAR(255),
    steps JSONB,
    plan TEXT,
    content TEXT,
    conclusion TEXT,
    sources JSONB NOT NULL DEFAULT '[]',
    error_message TEXT,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    completed_at TIMESTAMP
);`,
		},
		{
			name: "preferences",
			sql: `
CREATE TABLE IF NOT EXISTS preferences (
    client_id VARCHAR(255) PRIMARY KEY,
    schema_version INTEGER NOT NULL DEFAULT 1,
    interests TEXT[] NOT NULL DEFAULT '{}',
    updated_at TIMESTAMP DEFAULT NOW()
);`,
		},
	}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, table.sql); err != nil {
			log.Fatalf("Failed to create %s table: %v", table.name, err)
		}
		log.Printf("✓ Created %s table", table.name)
	}

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_corrections_verified_created_at",
			sql:  "CREATE INDEX IF NOT EXISTS idx_corrections_verified_created_at ON corrections(verified, created_at DESC);",
		},
		{
			name: "idx_documents_session_id",
			sql:  "CREATE INDEX IF NOT EXISTS idx_documents_session_id ON documents(session_id);",
		},
		{
			name: "idx_research_jobs_status",
			sql:  "CREATE INDEX IF NOT EXISTS idx_research_jobs_status ON research_jobs(status);",
		},
	}

	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("✓ Created index: %s", idx.name)
		}
	}

	fmt.Println("\n✅ Schema created successfully!")
	fmt.Printf("   Tables: corrections, documents, research_jobs, preferences\n")
	fmt.Printf("   Indexes: %d indexes created\n", len(indexes))
}
