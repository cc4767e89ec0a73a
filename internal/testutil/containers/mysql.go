//go:build integration

package containers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/zancompute/zanconfig/internal/conf"
)

// MySQLOptions configures StartMySQL. Zero values select the defaults.
type MySQLOptions struct {
	// Image defaults to mysql:8.0.
	Image string
	// Database is created at startup; defaults to configpage_test.
	Database string
	// Password of the root account; defaults to "test".
	Password string
}

// MySQL is a running MySQL container. Tests connect as root so they can
// create the per-client schemas the freshness report reads.
type MySQL struct {
	container *mysql.MySQLContainer
	settings  conf.DatabaseSettings
	admin     *sqlx.DB
}

// StartMySQL starts a MySQL container and waits until it accepts queries.
func StartMySQL(ctx context.Context, opts MySQLOptions) (*MySQL, error) {
	if opts.Image == "" {
		opts.Image = "mysql:8.0"
	}
	if opts.Database == "" {
		opts.Database = "configpage_test"
	}
	if opts.Password == "" {
		opts.Password = "test"
	}

	container, err := mysql.Run(ctx, opts.Image,
		mysql.WithDatabase(opts.Database),
		mysql.WithUsername("root"),
		mysql.WithPassword(opts.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start MySQL container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	settings := conf.DatabaseSettings{
		Driver:          conf.DriverMySQL,
		Host:            host,
		Port:            port.Int(),
		User:            "root",
		Password:        opts.Password,
		Name:            opts.Database,
		ConnectTimeout:  conf.Duration(10 * time.Second),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: conf.Duration(time.Minute),
	}
	admin, err := sqlx.ConnectContext(ctx, "mysql", settings.DSN())
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to connect to MySQL container: %w", err)
	}

	return &MySQL{container: container, settings: settings, admin: admin}, nil
}

// Settings returns connection settings for the test database. Name may be
// overridden by the caller to target another schema.
func (m *MySQL) Settings() conf.DatabaseSettings {
	return m.settings
}

// Address returns host:port of the server.
func (m *MySQL) Address() string {
	return m.settings.Host + ":" + strconv.Itoa(m.settings.Port)
}

// Exec runs statements in order on the admin connection.
func (m *MySQL) Exec(ctx context.Context, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := m.admin.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}

// DropTables removes tables from the test database so each test starts from
// an empty schema.
func (m *MySQL) DropTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if !conf.IsIdentifier(table) {
			return fmt.Errorf("invalid table name: %s", table)
		}
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS `%s`.`%s`", m.settings.Name, table)
		if _, err := m.admin.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// Terminate closes the admin connection and removes the container.
func (m *MySQL) Terminate(ctx context.Context) error {
	if m.admin != nil {
		_ = m.admin.Close()
		m.admin = nil
	}
	if err := m.container.Terminate(ctx); err != nil {
		return fmt.Errorf("failed to terminate MySQL container: %w", err)
	}
	return nil
}
