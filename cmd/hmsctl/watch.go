package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xela07ax/hospital-console/internal/app"
	"github.com/xela07ax/hospital-console/internal/dashboard"
	"go.uber.org/zap"
)

// newWatchCmd — дашборд в терминале: тот же Sync, что и у WebSocket-сессии.
func newWatchCmd(e *env) *cobra.Command {
	var refreshEvery time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print live dashboard stats until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := app.Open(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer res.Close()

			out := &stateWriter{w: cmd.OutOrStdout()}
			s := dashboard.New(
				dashboard.NewAggregator(res.Repo, e.cfg.Dashboard.Location()),
				res.Feed,
				dashboard.WithLogger(e.logger),
				dashboard.WithRefreshTimeout(e.cfg.Dashboard.RefreshTimeout),
				dashboard.WithOnChange(out.state),
				dashboard.WithNotifier(dashboard.NotifierFunc(out.note)),
			)
			if err := s.Mount(ctx); err != nil {
				return err
			}

			// Периодический пересчет на случай, если подписки недоступны
			var ticker <-chan time.Time
			if refreshEvery > 0 {
				t := time.NewTicker(refreshEvery)
				defer t.Stop()
				ticker = t.C
			}
		loop:
			for {
				select {
				case <-ctx.Done():
					break loop
				case <-ticker:
					s.RefreshData()
				}
			}

			unmountCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Dashboard.RefreshTimeout+time.Second)
			defer cancel()
			if err := s.Unmount(unmountCtx); err != nil {
				e.logger.Warn("unmount", zap.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&refreshEvery, "every", 0, "also refresh on this interval (0 disables)")
	return cmd
}

// stateWriter печатает состояние и уведомления построчно.
type stateWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *stateWriter) state(st dashboard.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, formatState(st))
}

func (s *stateWriter) note(n dashboard.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s] %s: %s\n", n.Level, n.Title, n.Description)
}

func formatState(st dashboard.State) string {
	status := "ok"
	switch {
	case st.Loading:
		status = "loading"
	case st.Err != "":
		status = "error: " + st.Err
	}
	return fmt.Sprintf("patients=%d appointments_today=%d doctors=%d month_revenue=%s [%s]",
		st.Stats.PatientCount,
		st.Stats.AppointmentCountToday,
		st.Stats.DoctorCount,
		st.Stats.MonthRevenue.StringFixed(2),
		status)
}
