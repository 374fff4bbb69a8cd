// ABOUTME: SQLite database schema for the recipe corpus
// ABOUTME: Recipes with embedding BLOBs plus per-user nutrition profiles
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Recipe corpus; embedding is NULL until the recipe has been indexed
CREATE TABLE IF NOT EXISTS recipes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    ingredients TEXT,
    instructions TEXT,
    tags TEXT,
    calories INTEGER DEFAULT 0,
    protein REAL DEFAULT 0,
    carbs REAL DEFAULT 0,
    fat REAL DEFAULT 0,
    prep_minutes INTEGER DEFAULT 0,
    cook_minutes INTEGER DEFAULT 0,
    servings INTEGER DEFAULT 0,
    author TEXT,
    image_url TEXT,
    embedding BLOB,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Nutrition and fitness context, one row per user
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id TEXT PRIMARY KEY,
    name TEXT,
    subscription_type TEXT DEFAULT 'free',
    daily_calories INTEGER DEFAULT 0,
    protein_target INTEGER DEFAULT 0,
    fitness_goal TEXT,
    dietary_preferences TEXT,
    allergies TEXT,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recipes_created ON recipes(created_at);
CREATE INDEX IF NOT EXISTS idx_recipes_title ON recipes(title);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
