package database

import (
	"context"
	"database/sql"
	"log"

	"github.com/xavierca1/omnisend-sync/internal/entity"
)

// SettingsRepository guarda o blob de configuração da integração num
// par chave/valor (espelho das options do WordPress) mais o estado do
// sync inicial — os únicos dados que persistimos localmente.
type SettingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

func (r *SettingsRepository) GetOptions(ctx context.Context) (entity.Options, error) {
	query := `
		SELECT key, value FROM integration_settings
		WHERE key IN ($1, $2)
	`

	rows, err := r.DB.QueryContext(ctx, query, entity.OptionConsentSetting, entity.OptionSyncSetting)
	if err != nil {
		log.Printf("Erro crítico no banco: %v", err)
		return entity.Options{}, err
	}
	defer rows.Close()

	var options entity.Options
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return entity.Options{}, err
		}

		switch key {
		case entity.OptionConsentSetting:
			options.ConsentEnabled = value == "1"
		case entity.OptionSyncSetting:
			options.SyncEnabled = value == "1"
		}
	}

	return options, rows.Err()
}

// SyncState devolve o estado atual do sync inicial.
// Linha ausente conta como not_started.
func (r *SettingsRepository) SyncState(ctx context.Context) (string, error) {
	query := `SELECT value FROM integration_settings WHERE key = $1`

	var state string
	err := r.DB.QueryRowContext(ctx, query, entity.OptionSyncState).Scan(&state)
	if err == sql.ErrNoRows {
		return entity.SyncNotStarted, nil
	}
	if err != nil {
		return "", err
	}

	return state, nil
}

// TryStartInitialSync faz a transição atômica not_started -> in_progress.
// Dois gatilhos concorrentes disputam o mesmo UPDATE condicional:
// só um enxerga rows affected = 1 e ganha o direito de rodar o backfill.
func (r *SettingsRepository) TryStartInitialSync(ctx context.Context) (bool, error) {
	query := `
		INSERT INTO integration_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2
		WHERE integration_settings.value = $3
	`

	result, err := r.DB.ExecContext(ctx, query,
		entity.OptionSyncState,
		entity.SyncInProgress,
		entity.SyncNotStarted,
	)
	if err != nil {
		log.Printf("Erro crítico no banco: %v", err)
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *SettingsRepository) MarkInitialSyncDone(ctx context.Context) error {
	query := `UPDATE integration_settings SET value = $1 WHERE key = $2`

	_, err := r.DB.ExecContext(ctx, query, entity.SyncDone, entity.OptionSyncState)
	return err
}

// ResetInitialSync rearma o portão para o backfill rodar de novo.
// Exposto num endpoint administrativo, não usado no fluxo normal.
func (r *SettingsRepository) ResetInitialSync(ctx context.Context) error {
	query := `
		INSERT INTO integration_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2
	`

	_, err := r.DB.ExecContext(ctx, query, entity.OptionSyncState, entity.SyncNotStarted)
	return err
}
