package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cozmicBaseSchema is the slice of the application schema the catalog
// evolves, as it looked before any of the catalog's changes.
var cozmicBaseSchema = []string{
	"CREATE TABLE parents (id INTEGER PRIMARY KEY, email TEXT, access_code TEXT)",
	"CREATE TABLE teachers (id INTEGER PRIMARY KEY, email TEXT)",
	"CREATE TABLE classes (id INTEGER PRIMARY KEY, teacher_id INTEGER)",
	"CREATE TABLE students (id INTEGER PRIMARY KEY, student_email TEXT, parent_id INTEGER, student_id TEXT)",
	"CREATE TABLE assigned_practice (id INTEGER PRIMARY KEY, teacher_id INTEGER, class_id INTEGER, is_published BOOLEAN, open_date TIMESTAMP, due_date TIMESTAMP)",
	"CREATE TABLE assigned_questions (id INTEGER PRIMARY KEY, practice_id INTEGER)",
	"CREATE TABLE student_submissions (id INTEGER PRIMARY KEY, student_id INTEGER, assignment_id INTEGER, status TEXT, started_at TIMESTAMP, submitted_at TIMESTAMP)",
	"CREATE TABLE question_logs (id INTEGER PRIMARY KEY)",
	"CREATE TABLE study_buddy_message (id INTEGER PRIMARY KEY, student_id INTEGER)",
	"CREATE TABLE game_sessions (id INTEGER PRIMARY KEY)",
	"CREATE TABLE game_leaderboards (id INTEGER PRIMARY KEY, game_key TEXT)",
	"CREATE TABLE daily_challenges (id INTEGER PRIMARY KEY)",
	"INSERT INTO student_submissions (status) VALUES ('graded'), ('in_progress')",
	"INSERT INTO game_sessions DEFAULT VALUES",
}

func TestBuiltinTargetsAreValid(t *testing.T) {
	targets := builtinTargets()
	require.NoError(t, validateTargets(targets))
	require.NoError(t, validateTargets(append([]SchemaTarget{historyTarget()}, targets...)))

	for _, tgt := range targets {
		assert.NotEmpty(t, tgt.Group, tgt.Name)
	}
}

func TestBuiltinTargetsOrder(t *testing.T) {
	pos := map[string]int{}
	for i, tgt := range builtinTargets() {
		pos[tgt.Name] = i
	}
	// idx_class_join_code needs the join_code column.
	assert.Less(t, pos["add_class_join_codes"], pos["add_performance_indexes_classes"])
	// idx_parent_stripe_customer needs the Stripe columns.
	assert.Less(t, pos["add_stripe_ids_parents"], pos["add_performance_indexes_parents"])
	// The conversation link is added after the conversation table.
	assert.Less(t, pos["add_study_buddy_conversations"], pos["add_study_buddy_message_conversation"])
	assert.Equal(t, 0, pos["add_security_columns"])
}

func TestBuiltinCatalogAppliesToSQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteTestDB(t, cozmicBaseSchema...)
	targets := builtinTargets()

	r := &runner{db: db}
	results, err := r.applyAll(ctx, targets)
	require.NoError(t, err)
	require.Len(t, results, len(targets))

	s := summarize(results)
	assert.Zero(t, s.Failed)
	assert.Equal(t, 4, s.Tables) // templates, admins, subject progress, conversations
	assert.EqualValues(t, 1, s.RowsBackfilled)

	assert.Contains(t, columnsOf(t, db, "students"), "account_locked_until")
	assert.Contains(t, columnsOf(t, db, "game_sessions"), "powerups_used")
	assert.EqualValues(t, 1, queryInt(t, db, "SELECT COUNT(*) FROM game_sessions WHERE difficulty = 'medium' AND game_mode = 'timed'"))
	assert.EqualValues(t, 1, queryInt(t, db, "SELECT COUNT(*) FROM student_submissions WHERE grade_released = 1"))

	found, err := db.Dialect.IndexExists(ctx, db.DB, "classes", "idx_class_join_code")
	require.NoError(t, err)
	assert.True(t, found)

	again, err := r.applyAll(ctx, targets)
	require.NoError(t, err)
	for _, res := range again {
		assert.True(t, res.AlreadySatisfied, res.Target)
	}
}
