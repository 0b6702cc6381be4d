package dashboard

import "go.uber.org/zap"

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification — короткое сообщение для пользователя (toast).
type Notification struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notifier доставляет уведомления потребителю. Вызывается вне внутренних блокировок.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc позволяет использовать функцию как Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier пишет уведомления в лог. Используется, когда UI нет (сервер, CLI).
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Notify(note Notification) {
	fields := []zap.Field{zap.String("title", note.Title), zap.String("description", note.Description)}
	if note.Level == LevelError {
		n.logger.Warn("dashboard notification", fields...)
		return
	}
	n.logger.Info("dashboard notification", fields...)
}

var (
	noteSubscribed = Notification{
		Level:       LevelInfo,
		Title:       "Real-time updates active",
		Description: "Dashboard will refresh automatically when data changes",
	}
	noteRefreshing = Notification{
		Level:       LevelInfo,
		Title:       "Refreshing data",
		Description: "Dashboard data is being updated",
	}
	noteFetchFailed = Notification{
		Level:       LevelError,
		Title:       "Error",
		Description: "Failed to fetch dashboard data",
	}
	noteSubscribeFailed = Notification{
		Level:       LevelError,
		Title:       "Real-time updates unavailable",
		Description: "Dashboard will not refresh automatically, use manual refresh",
	}
)
