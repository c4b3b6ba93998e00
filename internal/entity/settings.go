package entity

// Chaves do blob de configuração (mesmos nomes que o plugin grava no WordPress)
const (
	OptionConsentSetting = "filter_lms_consent_setting"
	OptionSyncSetting    = "filter_lms_sync_setting"
	OptionSyncState      = "initial_sync_state"
)

// Estados do sync inicial. Um único campo com transição atômica
// (not_started -> in_progress -> done) em vez de duas flags soltas,
// para dois gatilhos concorrentes não passarem juntos pelo portão.
const (
	SyncNotStarted = "not_started"
	SyncInProgress = "in_progress"
	SyncDone       = "done"
)

// Options é o blob de configuração da integração já interpretado
type Options struct {
	// ConsentEnabled liga a coleta de consentimento nos formulários.
	// Desligado, todo contato entra como subscribed (comportamento legado opt-out).
	ConsentEnabled bool

	// SyncEnabled libera o backfill disparado pelo worker de sync
	SyncEnabled bool
}
