package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"mcp-meal-planner/internal/catalog"
	"mcp-meal-planner/internal/models"
)

// SQLiteStorage is the catalog source. It stores only the per-meal food
// catalogs; no user data is ever written.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS catalog_items (
        meal TEXT NOT NULL,
        food_group TEXT NOT NULL,
        item TEXT NOT NULL,
        calories INTEGER NOT NULL CHECK (calories >= 0),
        PRIMARY KEY (meal, food_group, item)
    );

    CREATE INDEX IF NOT EXISTS idx_catalog_items_meal ON catalog_items(meal);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveCatalog replaces the stored catalog of one meal.
func (s *SQLiteStorage) SaveCatalog(meal models.MealType, c catalog.FoodCatalog) error {
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM catalog_items WHERE meal = ?`, string(meal)); err != nil {
		return fmt.Errorf("failed to clear %s catalog: %w", meal, err)
	}

	itemQuery := `
        INSERT INTO catalog_items (meal, food_group, item, calories)
        VALUES (?, ?, ?, ?)
    `
	for _, it := range c.Flatten() {
		if _, err := tx.Exec(itemQuery, string(meal), it.Group, it.Name, it.Calories); err != nil {
			return fmt.Errorf("failed to insert item %q: %w", it.Name, err)
		}
	}

	return tx.Commit()
}

// SaveSet stores all three catalogs.
func (s *SQLiteStorage) SaveSet(set catalog.Set) error {
	for _, meal := range models.MealTypes {
		if err := s.SaveCatalog(meal, set.For(meal)); err != nil {
			return fmt.Errorf("failed to save %s catalog: %w", meal, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) LoadCatalog(meal models.MealType) (catalog.FoodCatalog, error) {
	query := `
        SELECT food_group, item, calories
        FROM catalog_items
        WHERE meal = ?
        ORDER BY food_group, item
    `

	rows, err := s.db.Query(query, string(meal))
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	c := catalog.FoodCatalog{}
	for rows.Next() {
		var group, item string
		var calories int
		if err := rows.Scan(&group, &item, &calories); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		if c[group] == nil {
			c[group] = map[string]int{}
		}
		c[group][item] = calories
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadSet reads all three catalogs.
func (s *SQLiteStorage) LoadSet() (catalog.Set, error) {
	var set catalog.Set
	var err error
	if set.Breakfast, err = s.LoadCatalog(models.Breakfast); err != nil {
		return catalog.Set{}, fmt.Errorf("failed to load breakfast catalog: %w", err)
	}
	if set.Lunch, err = s.LoadCatalog(models.Lunch); err != nil {
		return catalog.Set{}, fmt.Errorf("failed to load lunch catalog: %w", err)
	}
	if set.Dinner, err = s.LoadCatalog(models.Dinner); err != nil {
		return catalog.Set{}, fmt.Errorf("failed to load dinner catalog: %w", err)
	}
	return set, nil
}

func (s *SQLiteStorage) CountItems() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM catalog_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count catalog items: %w", err)
	}
	return n, nil
}

// Seed stores set when the database holds no catalog yet, or always when
// force is true. It reports whether anything was written.
func (s *SQLiteStorage) Seed(set catalog.Set, force bool) (bool, error) {
	if !force {
		n, err := s.CountItems()
		if err != nil {
			return false, err
		}
		if n > 0 {
			return false, nil
		}
	}
	if err := s.SaveSet(set); err != nil {
		return false, err
	}
	return true, nil
}
