package persistence

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/petrijr/asyncvalue/internal/testutil"
)

type PostgresStoreTestSuite struct {
	suite.Suite
	dsn   string
	db    *sql.DB
	store *PostgresSnapshotStore
}

func TestPostgresTestSuite(t *testing.T) {
	dsn := testutil.GetPostgresDSN(t)
	suite.Run(t, &PostgresStoreTestSuite{dsn: dsn})
}

func (p *PostgresStoreTestSuite) SetupSuite() {
	db, err := sql.Open("pgx", p.dsn)
	require.NoError(p.T(), err)
	require.NoError(p.T(), db.PingContext(context.Background()))
	p.db = db
}

func (p *PostgresStoreTestSuite) TearDownSuite() {
	_ = p.db.Close()
}

func (p *PostgresStoreTestSuite) SetupTest() {
	store, err := NewPostgresSnapshotStore(p.db)
	require.NoError(p.T(), err)

	_, err = p.db.Exec(`TRUNCATE snapshots`)
	require.NoError(p.T(), err)

	p.store = store
}

func (p *PostgresStoreTestSuite) TestPostgresSnapshotStore_Contract() {
	exerciseSnapshotStore(p.T(), p.store)
}
