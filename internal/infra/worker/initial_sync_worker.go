package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/omnisend-sync/internal/entity"
	"github.com/xavierca1/omnisend-sync/internal/infra/http/middleware"
	"github.com/xavierca1/omnisend-sync/internal/usecase"
)

// InitialSyncWorker é o equivalente do cron do WordPress: a cada tick
// verifica se o backfill inicial está liberado e ainda não rodou, e
// dispara a varredura completa uma única vez.
type InitialSyncWorker struct {
	Settings     SettingsGate
	Service      BackfillService
	Mailer       ReportMailer
	ReportTo     string
	tickInterval time.Duration
}

type SettingsGate interface {
	GetOptions(ctx context.Context) (entity.Options, error)
	TryStartInitialSync(ctx context.Context) (bool, error)
	MarkInitialSyncDone(ctx context.Context) error
}

type BackfillService interface {
	BackfillAllUsers(ctx context.Context) (*usecase.BackfillReport, error)
}

type ReportMailer interface {
	SendSyncReport(to string, contacts, batches int, took time.Duration) error
}

func NewInitialSyncWorker(
	settings SettingsGate,
	service BackfillService,
	mailer ReportMailer,
	reportTo string,
) *InitialSyncWorker {
	return &InitialSyncWorker{
		Settings:     settings,
		Service:      service,
		Mailer:       mailer,
		ReportTo:     reportTo,
		tickInterval: 1 * time.Minute,
	}
}

func (w *InitialSyncWorker) Start(ctx context.Context) {
	log.Println("🕒 Initial Sync Worker iniciado (tick de 1min)")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Initial Sync Worker encerrado")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *InitialSyncWorker) runOnce(ctx context.Context) {
	options, err := w.Settings.GetOptions(ctx)
	if err != nil {
		log.Printf("⚠️ [SYNC] Falha ao ler configurações: %v", err)
		return
	}
	if !options.SyncEnabled {
		return
	}

	// Transição atômica not_started -> in_progress: só um tick (ou uma
	// instância) ganha o portão, os outros saem aqui
	started, err := w.Settings.TryStartInitialSync(ctx)
	if err != nil {
		log.Printf("⚠️ [SYNC] Falha no portão de sync: %v", err)
		return
	}
	if !started {
		return
	}

	log.Println("🔄 [SYNC] Iniciando backfill de usuários existentes...")
	begin := time.Now()

	report, err := w.Service.BackfillAllUsers(ctx)
	if err != nil {
		// Fica em in_progress de propósito: backfill interrompido não
		// sabe de onde recomeçar, então não deixamos rodar de novo
		// sozinho — o rearme é decisão de operador via /sync/reset.
		log.Printf("❌ [SYNC] Backfill interrompido: %v", err)
		middleware.RecordIntegrationError("lms")
		return
	}

	middleware.RecordBackfill(report.Batches, report.Contacts)

	if err := w.Settings.MarkInitialSyncDone(ctx); err != nil {
		log.Printf("⚠️ [SYNC] Backfill ok, mas falha ao marcar como concluído: %v", err)
	}

	took := time.Since(begin)
	log.Printf("🚀 [SYNC] Backfill finalizado em %s", took.Round(time.Second))

	if w.Mailer != nil && w.ReportTo != "" {
		if err := w.Mailer.SendSyncReport(w.ReportTo, report.Contacts, report.Batches, took); err != nil {
			log.Printf("⚠️ [SYNC] Falha ao enviar relatório: %v", err)
		}
	}
}
