package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/phishing-filter/internal/core"
)

// MySQLCache is a MySQL implementation of the ResultCache interface for
// deployments that share one cache across several filter instances.
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL result cache.
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_cache (
			cache_key VARCHAR(64) PRIMARY KEY,
			result_json MEDIUMTEXT NOT NULL,
			last_seen DATETIME,
			expires_at DATETIME,
			INDEX idx_analysis_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached analysis result.
func (c *MySQLCache) Get(ctx context.Context, key string) (*core.AnalysisResult, bool) {
	var resultJSON string

	err := c.db.QueryRowContext(ctx, `
		SELECT result_json
		FROM analysis_cache
		WHERE cache_key = ? AND expires_at > NOW()
	`, key).Scan(&resultJSON)

	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Error("Failed to query cache", zap.Error(err), zap.String("key", key))
		}
		return nil, false
	}

	var result core.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		c.logger.Error("Failed to decode cached result", zap.Error(err), zap.String("key", key))
		return nil, false
	}

	return &result, true
}

// Set stores an analysis result.
func (c *MySQLCache) Set(ctx context.Context, key string, result *core.AnalysisResult, ttl time.Duration) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("Failed to encode result for cache", zap.Error(err), zap.String("key", key))
		return
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO analysis_cache (cache_key, result_json, last_seen, expires_at)
		VALUES (?, ?, NOW(), ?)
		ON DUPLICATE KEY UPDATE result_json = VALUES(result_json),
			last_seen = VALUES(last_seen), expires_at = VALUES(expires_at)
	`, key, string(resultJSON), time.Now().Add(ttl))

	if err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("key", key))
	}
}

// Delete removes a cache entry.
func (c *MySQLCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE cache_key = ?
	`, key)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries.
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache
		WHERE expires_at <= NOW()
	`)

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	if expired, err := result.RowsAffected(); err == nil {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", expired))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries.
func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the connection pool.
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
