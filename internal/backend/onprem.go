package backend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/repository"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

// Queries run against the EBS WMS schema. Each must return a single COUNT.
const (
	// LPNs in a resides-in-receiving / picked / loaded context untouched for 4h
	DefaultStuckLPNQuery = `SELECT COUNT(*) FROM wms_license_plate_numbers
		WHERE lpn_context IN (3, 8, 9, 11)
		AND last_update_date < SYSDATE - 4/24`

	// Open waves created more than 4h ago
	DefaultAgingWaveQuery = `SELECT COUNT(*) FROM wms_wp_wave_headers_vl
		WHERE wave_status NOT IN ('Closed', 'Cancelled')
		AND creation_date < SYSDATE - 4/24`
)

// OnPremDB counts stuck LPNs and aging waves directly in the ERP database
type OnPremDB struct {
	db           *sql.DB
	stuckQuery   string
	agingQuery   string
	queryTimeout time.Duration
}

// OpenOnPrem opens a connection pool to the EBS database.
// DSN is either an oracle:// URL or host:port/service.
func OpenOnPrem(cfg config.OnPremConfig) (*OnPremDB, error) {
	connStr, err := oracleURL(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open oracle connection: %w", err)
	}
	// one query at a time, one OU at a time
	db.SetMaxOpenConns(1)

	slog.Info("On-prem ERP adapter configured", "dsn", maskDSN(cfg.DSN), "user", cfg.User)
	return NewOnPremDB(db, cfg.QueryTimeout), nil
}

// NewOnPremDB wraps an open database with the default queries
func NewOnPremDB(db *sql.DB, queryTimeout time.Duration) *OnPremDB {
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	return &OnPremDB{
		db:           db,
		stuckQuery:   DefaultStuckLPNQuery,
		agingQuery:   DefaultAgingWaveQuery,
		queryTimeout: queryTimeout,
	}
}

// StuckLicensePlates counts stuck LPNs
func (o *OnPremDB) StuckLicensePlates(ctx context.Context) (int, error) {
	return o.count(ctx, "stuck_lpn", o.stuckQuery)
}

// AgingWaves counts aging waves
func (o *OnPremDB) AgingWaves(ctx context.Context) (int, error) {
	return o.count(ctx, "aging_waves", o.agingQuery)
}

// Close closes the connection pool
func (o *OnPremDB) Close() error {
	return o.db.Close()
}

func (o *OnPremDB) count(ctx context.Context, operation, query string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, o.queryTimeout)
	defer cancel()

	return repository.Instrument(ctx, "onprem", operation, func() (int, error) {
		var n int
		if err := o.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return 0, fmt.Errorf("%s query: %w", operation, err)
		}
		return n, nil
	})
}

// oracleURL builds a go-ora connection URL from the configured DSN
func oracleURL(cfg config.OnPremConfig) (string, error) {
	if strings.HasPrefix(cfg.DSN, "oracle://") {
		return cfg.DSN, nil
	}

	hostPort, service, ok := strings.Cut(cfg.DSN, "/")
	if !ok || service == "" {
		return "", fmt.Errorf("invalid oracle DSN %q: want host:port/service", cfg.DSN)
	}

	host, portStr, hasPort := strings.Cut(hostPort, ":")
	port := 1521
	if hasPort {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return "", fmt.Errorf("invalid oracle DSN port %q: %w", portStr, err)
		}
		port = p
	}

	return go_ora.BuildUrl(host, port, service, cfg.User, cfg.Password, nil), nil
}

// maskDSN hides credentials embedded in an oracle:// URL
func maskDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at >= 0 && strings.HasPrefix(dsn, "oracle://") {
		return "oracle://***" + dsn[at:]
	}
	return dsn
}
