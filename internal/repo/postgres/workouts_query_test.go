package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/workout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB builds statements without a server; nothing is sent.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(gormpg.New(gormpg.Config{DSN: "host=localhost user=fitlog dbname=fitlog sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb
}

func squash(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

func TestListQuery_ComposesBounds(t *testing.T) {
	gdb := dryRunDB(t)
	strength := workout.TypeStrength

	var rows []workoutRow
	stmt := listQuery(gdb, "u-1", workout.Filter{
		Type:        &strength,
		MinDuration: intPtr(30),
		MaxDuration: intPtr(60),
		MinCalories: intPtr(100),
		MaxCalories: intPtr(500),
	}).Find(&rows).Statement

	assert.Equal(t,
		`SELECT * FROM "workouts" WHERE user_id = $1 AND type = $2 AND duration >= $3 AND duration <= $4 AND calories >= $5 AND calories <= $6 ORDER BY date DESC, created_at DESC`,
		stmt.SQL.String())
	assert.Equal(t, []any{"u-1", "strength", 30, 60, 100, 500}, stmt.Vars)
}

func TestListQuery_DateBounds(t *testing.T) {
	gdb := dryRunDB(t)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	var rows []workoutRow
	stmt := listQuery(gdb, "u-1", workout.Filter{DateFrom: &from, DateTo: &to}).Find(&rows).Statement

	assert.Equal(t,
		`SELECT * FROM "workouts" WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC, created_at DESC`,
		stmt.SQL.String())
	assert.Equal(t, []any{"u-1", from, to}, stmt.Vars)
}

func TestListQuery_EmptyFilterOnlyScopesOwner(t *testing.T) {
	gdb := dryRunDB(t)

	var rows []workoutRow
	stmt := listQuery(gdb, "u-1", workout.Filter{}).Find(&rows).Statement

	assert.Equal(t, `SELECT * FROM "workouts" WHERE user_id = $1 ORDER BY date DESC, created_at DESC`, stmt.SQL.String())
	assert.Equal(t, []any{"u-1"}, stmt.Vars)
}

func TestStatsQueries(t *testing.T) {
	gdb := dryRunDB(t)

	var totals statsTotals
	stmt := totalsQuery(gdb, "u-1").Find(&totals).Statement
	sql := squash(stmt.SQL.String())

	for _, agg := range []string{
		"COUNT(*) AS total_workouts",
		"COALESCE(SUM(duration), 0)::float8 AS total_duration",
		"COALESCE(SUM(calories), 0)::float8 AS total_calories",
		"COALESCE(AVG(duration), 0)::float8 AS avg_duration",
		"COALESCE(AVG(calories), 0)::float8 AS avg_calories",
	} {
		assert.Contains(t, sql, agg)
	}
	assert.True(t, strings.HasSuffix(sql, `FROM "workouts" WHERE user_id = $1`), sql)
	assert.Equal(t, []any{"u-1"}, stmt.Vars)

	var counts []typeCountRow
	stmt = typeCountsQuery(gdb, "u-1").Find(&counts).Statement
	assert.Equal(t,
		`SELECT type, COUNT(*) AS count FROM "workouts" WHERE user_id = $1 GROUP BY "type" ORDER BY type`,
		stmt.SQL.String())
}

func TestWorkoutsRepo_CreateRejectsMalformedOwner(t *testing.T) {
	r := NewWorkoutsRepo(dryRunDB(t), nil)

	_, err := r.Create(context.Background(), workout.Data{Name: "Run", Type: workout.TypeCardio, Duration: 30}, "not-a-uuid")
	assert.ErrorIs(t, err, workout.ErrInvalidOwner)
}
