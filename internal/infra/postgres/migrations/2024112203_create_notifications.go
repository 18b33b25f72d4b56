package migrations

import _ "embed"

//go:embed 2024112203_create_notifications.sql
var createNotificationsSQL string

func init() {
	Migrations.MustRegister(sqlMigration(createNotificationsSQL, `DROP TABLE IF EXISTS notifications`))
}
