package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/xela07ax/hospital-console/internal/dashboard"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// DashboardService Описываем, что нам нужно от сервиса
type DashboardService interface {
	State() dashboard.State
	Refresh() dashboard.State
	NewSession(opts ...dashboard.Option) *dashboard.Sync
}

const (
	msgState        = "state"
	msgNotification = "notification"
	msgRefresh      = "refresh"

	liveWriteTimeout   = 5 * time.Second
	liveUnmountTimeout = 15 * time.Second
	liveNoteBuffer     = 16
)

// liveMessage — сообщение сервер -> клиент.
type liveMessage struct {
	Type         string                  `json:"type"`
	State        *dashboard.State        `json:"state,omitempty"`
	Notification *dashboard.Notification `json:"notification,omitempty"`
}

// clientMessage — сообщение клиент -> сервер, пока только {"type":"refresh"}.
type clientMessage struct {
	Type string `json:"type"`
}

type DashboardHandler struct {
	service        DashboardService
	allowedOrigins []string
	logger         *zap.Logger
}

func NewDashboardHandler(s DashboardService, allowedOrigins []string, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, allowedOrigins: allowedOrigins, logger: logger.Named("dashboard-handler")}
}

func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.State())
}

// Refresh запускает пересчет и не ждет его: 202 и текущее состояние.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, h.service.Refresh())
}

// Live — одно соединение = один смонтированный Sync со своими подписками.
func (h *DashboardHandler) Live(w http.ResponseWriter, r *http.Request) {
	// Таймауты http.Server рассчитаны на короткие запросы, снимаем их с соединения
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.allowedOrigins})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// changed — сигнал "состояние изменилось", писатель сам читает последнее State
	changed := make(chan struct{}, 1)
	notes := make(chan dashboard.Notification, liveNoteBuffer)

	session := h.service.NewSession(
		dashboard.WithOnChange(func(dashboard.State) {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
		dashboard.WithNotifier(dashboard.NotifierFunc(func(n dashboard.Notification) {
			select {
			case notes <- n:
			default:
				h.logger.Warn("live notification dropped", zap.String("title", n.Title))
			}
		})),
	)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, session, changed, notes)
		cancel()
	}()

	if err := session.Mount(ctx); err != nil {
		h.logger.Error("failed to mount dashboard session", zap.Error(err))
	}
	h.logger.Debug("live session opened", zap.Int("subscriptions", session.Subscriptions()))

	h.readLoop(ctx, conn, session)
	cancel()
	<-writerDone

	// Отписываемся до закрытия соединения, пересчеты в полете дожидаемся
	unmountCtx, stop := context.WithTimeout(context.Background(), liveUnmountTimeout)
	defer stop()
	if err := session.Unmount(unmountCtx); err != nil {
		h.logger.Warn("dashboard session unmount", zap.Error(err))
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *DashboardHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *dashboard.Sync) {
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				h.logger.Debug("live read failed", zap.Error(err))
			}
			return
		}
		switch msg.Type {
		case msgRefresh:
			session.RefreshData()
		default:
			h.logger.Debug("unknown live message", zap.String("type", msg.Type))
		}
	}
}

func (h *DashboardHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *dashboard.Sync, changed <-chan struct{}, notes <-chan dashboard.Notification) {
	for {
		var msg liveMessage
		select {
		case <-ctx.Done():
			return
		case <-changed:
			st := session.State()
			msg = liveMessage{Type: msgState, State: &st}
		case n := <-notes:
			msg = liveMessage{Type: msgNotification, Notification: &n}
		}

		wctx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
		err := wsjson.Write(wctx, conn, msg)
		cancel()
		if err != nil {
			h.logger.Debug("live write failed", zap.Error(err))
			return
		}
	}
}
