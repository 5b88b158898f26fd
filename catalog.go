package main

// Catalog helpers. Columns added to existing tables are nullable unless
// stated otherwise, matching how the application's ORM models declare them.

func nullable(name string, ct ColumnType, def any) ColumnSpec {
	return ColumnSpec{Name: name, Type: ct, Default: def, Nullable: true}
}

func required(name string, ct ColumnType) ColumnSpec {
	return ColumnSpec{Name: name, Type: ct}
}

func createdNow(name string) ColumnSpec {
	return ColumnSpec{Name: name, Type: Timestamp, DefaultExpr: CurrentTimestamp, Nullable: true}
}

func index(name string, cols ...string) IndexSpec {
	return IndexSpec{Name: name, Columns: cols}
}

func uniqueIndex(name string, cols ...string) IndexSpec {
	return IndexSpec{Name: name, Columns: cols, Unique: true}
}

// builtinTargets returns the CozmicLearning schema history in the order the
// application applies it at startup. Later targets may index columns that
// earlier ones add.
func builtinTargets() []SchemaTarget {
	var targets []SchemaTarget
	targets = append(targets, securityTargets()...)
	targets = append(targets, stripeTargets()...)
	targets = append(targets,
		assignmentTemplatesTarget(),
		gradeReleasedTarget(),
		adaptiveTrackingTarget(),
		classJoinCodeTarget(),
	)
	targets = append(targets, performanceIndexTargets()...)
	targets = append(targets,
		outputModerationTarget(),
		visualFieldsTarget(),
		moderationFieldsTarget(),
		weeklyEmailTarget(),
	)
	targets = append(targets, arcadeTargets()...)
	targets = append(targets,
		adminsTarget(),
		subjectProgressTarget(),
		conversationsTarget(),
		conversationLinkTarget(),
	)
	return targets
}

func securityTargets() []SchemaTarget {
	return []SchemaTarget{{
		Name:  "add_security_columns",
		Group: "security",
		Table: "students",
		Columns: []ColumnSpec{
			nullable("failed_login_attempts", Integer, 0),
			nullable("account_locked_until", Timestamp, nil),
		},
	}}
}

func stripeTargets() []SchemaTarget {
	var out []SchemaTarget
	for _, table := range []string{"parents", "teachers", "students"} {
		out = append(out, SchemaTarget{
			Name:  "add_stripe_ids_" + table,
			Group: "stripe",
			Table: table,
			Columns: []ColumnSpec{
				nullable("stripe_customer_id", Varchar(255), nil),
				nullable("stripe_subscription_id", Varchar(255), nil),
			},
		})
	}
	return out
}

func assignmentTemplatesTarget() SchemaTarget {
	return SchemaTarget{
		Name:   "add_assignment_templates",
		Group:  "templates",
		Table:  "assignment_templates",
		Create: &CreateSpec{PrimaryKey: "id"},
		Columns: []ColumnSpec{
			nullable("teacher_id", Integer, nil),
			nullable("parent_id", Integer, nil),
			required("title", Varchar(200)),
			nullable("description", Text, nil),
			nullable("subject", Varchar(50), nil),
			nullable("grade_level", Varchar(20), nil),
			required("template_data", Text),
			nullable("is_public", Boolean, false),
			nullable("use_count", Integer, 0),
			nullable("tags", Text, nil),
			createdNow("created_at"),
			createdNow("updated_at"),
		},
		Indexes: []IndexSpec{
			index("idx_assignment_template_teacher_id", "teacher_id"),
			index("idx_assignment_template_parent_id", "parent_id"),
			index("idx_assignment_template_subject", "subject"),
			index("idx_assignment_template_is_public", "is_public"),
			index("idx_assignment_template_created_at", "created_at"),
		},
	}
}

func gradeReleasedTarget() SchemaTarget {
	return SchemaTarget{
		Name:    "add_grade_released",
		Group:   "submissions",
		Table:   "student_submissions",
		Columns: []ColumnSpec{nullable("grade_released", Boolean, false)},
		// Submissions graded before the flag existed were already visible.
		Backfills: []BackfillRule{{Column: "grade_released", Value: true, Where: "status = 'graded'"}},
	}
}

func adaptiveTrackingTarget() SchemaTarget {
	return SchemaTarget{
		Name:  "add_adaptive_tracking",
		Group: "submissions",
		Table: "student_submissions",
		Columns: []ColumnSpec{
			nullable("current_question_index", Integer, 0),
			nullable("mc_phase_complete", Boolean, false),
		},
	}
}

func classJoinCodeTarget() SchemaTarget {
	return SchemaTarget{
		Name:    "add_class_join_codes",
		Group:   "classes",
		Table:   "classes",
		Columns: []ColumnSpec{nullable("join_code", Varchar(8), nil)},
	}
}

func performanceIndexTargets() []SchemaTarget {
	byTable := []struct {
		table   string
		indexes []IndexSpec
	}{
		{"parents", []IndexSpec{
			index("idx_parent_email", "email"),
			index("idx_parent_access_code", "access_code"),
			index("idx_parent_stripe_customer", "stripe_customer_id"),
		}},
		{"teachers", []IndexSpec{
			index("idx_teacher_email", "email"),
			index("idx_teacher_stripe_customer", "stripe_customer_id"),
		}},
		{"classes", []IndexSpec{
			index("idx_class_teacher", "teacher_id"),
			index("idx_class_join_code", "join_code"),
		}},
		{"students", []IndexSpec{
			index("idx_student_email", "student_email"),
			index("idx_student_parent", "parent_id"),
			index("idx_student_id", "student_id"),
			index("idx_student_stripe_customer", "stripe_customer_id"),
		}},
		{"assigned_practice", []IndexSpec{
			index("idx_assignment_teacher", "teacher_id"),
			index("idx_assignment_class", "class_id"),
			index("idx_assignment_published", "is_published"),
			index("idx_assignment_dates", "open_date", "due_date"),
		}},
		{"assigned_questions", []IndexSpec{
			index("idx_question_practice", "practice_id"),
		}},
		{"student_submissions", []IndexSpec{
			index("idx_submission_student", "student_id"),
			index("idx_submission_assignment", "assignment_id"),
			index("idx_submission_status", "status"),
			index("idx_submission_timestamps", "started_at", "submitted_at"),
		}},
	}

	out := make([]SchemaTarget, 0, len(byTable))
	for _, b := range byTable {
		out = append(out, SchemaTarget{
			Name:    "add_performance_indexes_" + b.table,
			Group:   "performance",
			Table:   b.table,
			Indexes: b.indexes,
		})
	}
	return out
}

func outputModerationTarget() SchemaTarget {
	return SchemaTarget{
		Name:  "add_output_moderation",
		Group: "moderation",
		Table: "question_logs",
		Columns: []ColumnSpec{
			nullable("output_flagged", Boolean, false),
			nullable("output_moderation_reason", Text, nil),
		},
	}
}

func visualFieldsTarget() SchemaTarget {
	return SchemaTarget{
		Name:  "add_visual_fields",
		Group: "questions",
		Table: "assigned_questions",
		Columns: []ColumnSpec{
			nullable("visual_type", Text, nil),
			nullable("visual_content", Text, nil),
			nullable("visual_caption", Text, nil),
		},
	}
}

func moderationFieldsTarget() SchemaTarget {
	return SchemaTarget{
		Name:  "add_moderation_fields",
		Group: "moderation",
		Table: "study_buddy_message",
		Columns: []ColumnSpec{
			nullable("flagged", Boolean, false),
			nullable("flagged_reason", Varchar(200), nil),
			nullable("moderation_scores", Text, nil),
			nullable("parent_notified", Boolean, false),
			nullable("reviewed", Boolean, false),
			nullable("reviewer_notes", Text, nil),
		},
	}
}

func weeklyEmailTarget() SchemaTarget {
	return SchemaTarget{
		Name:    "add_email_weekly_summary",
		Group:   "parents",
		Table:   "parents",
		Columns: []ColumnSpec{nullable("email_weekly_summary", Boolean, true)},
	}
}

func arcadeTargets() []SchemaTarget {
	difficulty := nullable("difficulty", Varchar(20), "medium")
	return []SchemaTarget{
		{
			Name:  "add_arcade_game_sessions",
			Group: "arcade",
			Table: "game_sessions",
			Columns: []ColumnSpec{
				difficulty,
				nullable("game_mode", Varchar(20), "timed"),
				nullable("powerups_used", Text, nil),
			},
		},
		{
			Name:    "add_arcade_leaderboards",
			Group:   "arcade",
			Table:   "game_leaderboards",
			Columns: []ColumnSpec{difficulty},
			Indexes: []IndexSpec{index("idx_leaderboard_game_difficulty", "game_key", "difficulty")},
		},
		{
			Name:    "add_arcade_daily_challenges",
			Group:   "arcade",
			Table:   "daily_challenges",
			Columns: []ColumnSpec{difficulty},
		},
	}
}

func adminsTarget() SchemaTarget {
	return SchemaTarget{
		Name:   "add_admins",
		Group:  "admin",
		Table:  "admins",
		Create: &CreateSpec{PrimaryKey: "id"},
		Columns: []ColumnSpec{
			required("username", Varchar(50)),
			required("email", Varchar(120)),
			required("password_hash", Varchar(255)),
			nullable("full_name", Varchar(120), nil),
			nullable("is_active", Boolean, true),
			nullable("is_super_admin", Boolean, false),
			nullable("last_login", Timestamp, nil),
			nullable("last_login_ip", Varchar(45), nil),
			nullable("failed_login_attempts", Integer, 0),
			nullable("locked_until", Timestamp, nil),
			createdNow("created_at"),
			createdNow("updated_at"),
			nullable("created_by", Integer, nil),
		},
		Indexes: []IndexSpec{
			uniqueIndex("idx_admin_email", "email"),
			uniqueIndex("idx_admin_username", "username"),
		},
	}
}

func subjectProgressTarget() SchemaTarget {
	counter := func(name string) ColumnSpec { return nullable(name, Integer, 0) }
	stamp := func(name string) ColumnSpec {
		return ColumnSpec{Name: name, Type: Timestamp, DefaultExpr: CurrentTimestamp}
	}
	return SchemaTarget{
		Name:   "add_student_subject_progress",
		Group:  "progress",
		Table:  "student_subject_progress",
		Create: &CreateSpec{PrimaryKey: "id"},
		Columns: []ColumnSpec{
			required("student_id", Integer),
			required("subject_key", Varchar(50)),
			counter("questions_answered"),
			counter("correct_answers"),
			counter("total_time_minutes"),
			counter("xp_earned"),
			counter("mastery_percentage"),
			counter("lessons_completed"),
			counter("chapters_completed"),
			stamp("last_visited"),
			stamp("first_visit"),
			stamp("updated_at"),
		},
		Indexes: []IndexSpec{
			uniqueIndex("uq_student_subject", "student_id", "subject_key"),
			index("idx_subject_progress_student", "student_id"),
			index("idx_subject_progress_subject", "subject_key"),
			index("idx_subject_progress_student_subject", "student_id", "subject_key"),
		},
	}
}

func conversationsTarget() SchemaTarget {
	return SchemaTarget{
		Name:   "add_study_buddy_conversations",
		Group:  "study_buddy",
		Table:  "study_buddy_conversation",
		Create: &CreateSpec{PrimaryKey: "id"},
		Columns: []ColumnSpec{
			required("student_id", Integer),
			required("title", Varchar(200)),
			nullable("subject", Varchar(50), nil),
			createdNow("created_at"),
			createdNow("last_message_at"),
			nullable("message_count", Integer, 0),
			nullable("is_active", Boolean, true),
			nullable("archived", Boolean, false),
		},
		Indexes: []IndexSpec{
			index("idx_conversation_student_created", "student_id", "created_at"),
			index("idx_conversation_student_updated", "student_id", "last_message_at"),
		},
	}
}

func conversationLinkTarget() SchemaTarget {
	return SchemaTarget{
		Name:    "add_study_buddy_message_conversation",
		Group:   "study_buddy",
		Table:   "study_buddy_message",
		Columns: []ColumnSpec{nullable("conversation_id", Integer, nil)},
		Indexes: []IndexSpec{index("idx_study_buddy_conversation", "conversation_id")},
	}
}
