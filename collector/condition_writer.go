package collector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/raymondelooff/fermentation-monitor/reading"
	"go.uber.org/zap"
)

const upsertConditionSQL = "INSERT INTO `sensor_condition` " +
	"(`sensor_id`, `location`, `stage`, `temperature`, `humidity`, `measured_at`) " +
	"VALUES (?, ?, ?, ?, ?, ?) " +
	"ON DUPLICATE KEY UPDATE " +
	"`location` = VALUES(location), " +
	"`stage` = VALUES(stage), " +
	"`temperature` = VALUES(temperature), " +
	"`humidity` = VALUES(humidity), " +
	"`measured_at` = VALUES(measured_at)"

// ConditionWriter keeps the latest condition of every sensor in MySQL
type ConditionWriter struct {
	db     *sql.DB
	stmt   *sql.Stmt
	mu     sync.Mutex
	logger *zap.SugaredLogger
}

func (w *ConditionWriter) prepareStmt(ctx context.Context) (*sql.Stmt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stmt != nil {
		return w.stmt, nil
	}

	stmt, err := w.db.PrepareContext(ctx, upsertConditionSQL)
	if err != nil {
		return nil, fmt.Errorf("ConditionWriter: %s", err)
	}
	w.stmt = stmt

	return w.stmt, nil
}

// Name identifies the ConditionWriter in logs and metrics
func (w *ConditionWriter) Name() string {
	return "mysql"
}

// Forward inserts or updates the condition row of the reading's sensor
func (w *ConditionWriter) Forward(ctx context.Context, r reading.Reading, measuredAt time.Time) error {
	stmt, err := w.prepareStmt(ctx)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		r.SensorID,
		r.Location,
		r.ProcessStage,
		r.TemperatureCelsius,
		r.HumidityPercent,
		measuredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("ConditionWriter: %s", err)
	}

	w.logger.Debugf("ConditionWriter: condition of %s updated", r.SensorID)

	return nil
}

// Close releases the prepared statement
func (w *ConditionWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stmt == nil {
		return nil
	}

	err := w.stmt.Close()
	w.stmt = nil

	return err
}

// NewConditionWriter creates a new ConditionWriter
func NewConditionWriter(db *sql.DB, logger *zap.SugaredLogger) *ConditionWriter {
	return &ConditionWriter{
		db:     db,
		logger: logger,
	}
}
