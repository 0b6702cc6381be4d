package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "hms"

	// PostgresChannelPrefix — префикс каналов LISTEN/NOTIFY, совпадает с триггером hms_notify_change()
	PostgresChannelPrefix = "hms_changes_"
)

// RedisChangesChannel — канал Pub/Sub с событиями изменений одной таблицы.
// Например: hms:changes:patients
func RedisChangesChannel(prefix, table string) string {
	if prefix == "" {
		prefix = RedisNamespace
	}
	return fmt.Sprintf("%s:changes:%s", prefix, table)
}

// PostgresChangesChannel — имя канала NOTIFY для таблицы.
func PostgresChangesChannel(table string) string {
	return PostgresChannelPrefix + table
}
