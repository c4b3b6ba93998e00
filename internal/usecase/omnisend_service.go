package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/xavierca1/omnisend-sync/internal/entity"
	"github.com/xavierca1/omnisend-sync/internal/infra/integration/lms"
	"github.com/xavierca1/omnisend-sync/internal/infra/integration/omnisend"
	"github.com/xavierca1/omnisend-sync/internal/mapper"
)

// Tamanho do lote no backfill. 60 contatos por chamada fica bem abaixo
// do limite de itens do endpoint de batch do Omnisend.
const backfillChunkSize = 60

// OmnisendService orquestra mapper + validator + clients. É o único
// componente que conversa com o Omnisend.
type OmnisendService struct {
	Client    OmnisendClientInterface
	LMS       LMSClientInterface
	Settings  SettingsRepositoryInterface
	Validator *ResponseValidator
}

func NewOmnisendService(
	client OmnisendClientInterface,
	lmsClient LMSClientInterface,
	settings SettingsRepositoryInterface,
) *OmnisendService {
	return &OmnisendService{
		Client:    client,
		LMS:       lmsClient,
		Settings:  settings,
		Validator: NewResponseValidator(),
	}
}

// CreateContact cria o contato a partir dos campos do formulário de
// registro. Sucesso devolve o par de identidade para o tracker; falha
// de validação devolve nil sem erro (já foi logada).
func (s *OmnisendService) CreateContact(ctx context.Context, fields mapper.FormFields) (*TrackerData, error) {
	contact := mapper.NewContact(fields, s.consentEnabled(ctx))

	response, err := s.Client.SaveContact(ctx, contact)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "OMNISEND_UNAVAILABLE",
			Message: "falha ao salvar contato: " + err.Error(),
		}
	}

	if !s.Validator.IsValid(response) {
		return nil, nil
	}

	return &TrackerData{
		Email:       fields[mapper.FieldEmail],
		PhoneNumber: fields[mapper.FieldPhone],
	}, nil
}

// UpdateContact atualiza o contato do usuário logado. Fire-and-forget:
// o resultado não é validado nem reportado, por desenho.
func (s *OmnisendService) UpdateContact(ctx context.Context, fields mapper.FormFields, currentEmail string) {
	contact := mapper.UpdatedContact(fields, currentEmail, s.consentEnabled(ctx))

	if _, err := s.Client.SaveContact(ctx, contact); err != nil {
		log.Printf("⚠️ Update de contato falhou (seguindo em frente): %v", err)
	}
}

// ApplyEnrollmentChange: busca o contato remoto, resolve o título do
// curso e grava a lista atualizada. Ciclo fetch-then-save sem token de
// concorrência — eventos simultâneos do mesmo contato podem se perder.
func (s *OmnisendService) ApplyEnrollmentChange(ctx context.Context, email string, courseID int, action string) error {
	return s.applyListChange(ctx, email, courseID, action, mapper.ApplyCourseDelta)
}

// ApplyMembershipChange é o simétrico do ApplyEnrollmentChange
func (s *OmnisendService) ApplyMembershipChange(ctx context.Context, email string, membershipID int, action string) error {
	return s.applyListChange(ctx, email, membershipID, action, mapper.ApplyMembershipDelta)
}

func (s *OmnisendService) applyListChange(
	ctx context.Context,
	email string,
	postID int,
	action string,
	delta func(*entity.Contact, string, string) *entity.Contact,
) error {
	remote, err := s.Client.GetContactByEmail(ctx, email)
	if err != nil {
		return &TechnicalError{
			Code:    "OMNISEND_UNAVAILABLE",
			Message: "falha ao buscar contato: " + err.Error(),
		}
	}
	if remote.Contact == nil {
		return &DomainError{
			Code:    "CONTACT_NOT_FOUND",
			Message: "contato não existe no Omnisend: " + remote.Err,
		}
	}

	title, err := s.LMS.GetTitle(ctx, postID)
	if err != nil {
		return &TechnicalError{
			Code:    "LMS_UNAVAILABLE",
			Message: fmt.Sprintf("falha ao resolver título de %d: %v", postID, err),
		}
	}

	contact := delta(remote.Contact, title, action)

	response, err := s.Client.SaveContact(ctx, contact)
	if err != nil {
		return &TechnicalError{
			Code:    "OMNISEND_UNAVAILABLE",
			Message: "falha ao salvar contato: " + err.Error(),
		}
	}

	if !s.Validator.IsValid(response) {
		return &DomainError{
			Code:    "SYNC_FAILED",
			Message: "Omnisend não confirmou a atualização de " + email,
		}
	}

	return nil
}

// ConsentSnapshot lê o status remoto de inscrição dos dois canais.
// Sem email (sem sessão), volta o snapshot zerado.
func (s *OmnisendService) ConsentSnapshot(ctx context.Context, email string) ConsentSnapshot {
	if email == "" {
		return ConsentSnapshot{}
	}

	remote, err := s.Client.GetContactByEmail(ctx, email)
	if err != nil || remote.Contact == nil {
		return ConsentSnapshot{}
	}

	return ConsentSnapshot{
		Email: remote.Contact.EmailStatus,
		SMS:   remote.Contact.PhoneStatus,
	}
}

// UpdateConsent reconcilia o estado exibido no formulário antes de salvar
// o perfil: status remoto subscribed vira flag presente no mapeamento,
// e o resto segue o fluxo normal de update.
func (s *OmnisendService) UpdateConsent(ctx context.Context, fields mapper.FormFields, email string) {
	remote, err := s.Client.GetContactByEmail(ctx, email)
	if err != nil || remote.Contact == nil {
		log.Printf("⚠️ Sem contato remoto para reconciliar consentimento de %s", email)
		s.UpdateContact(ctx, fields, email)
		return
	}

	// Cópia própria: o map pode vir nil (body sem fields) e o do caller
	// não deve sair daqui com as flags mexidas
	reconciled := make(mapper.FormFields, len(fields)+2)
	for key, value := range fields {
		reconciled[key] = value
	}

	if remote.Contact.EmailStatus == entity.StatusSubscribed {
		reconciled[mapper.FieldConsentEmail] = "1"
	} else {
		delete(reconciled, mapper.FieldConsentEmail)
	}

	if remote.Contact.PhoneStatus == entity.StatusSubscribed {
		reconciled[mapper.FieldConsentPhone] = "1"
	} else {
		delete(reconciled, mapper.FieldConsentPhone)
	}

	s.UpdateContact(ctx, reconciled, email)
}

// BackfillAllUsers varre os usuários do WordPress em chunks fixos,
// descarta administradores e manda um batch upsert por chunk. Chunk que
// falha no envio é logado e pulado — sem retry. Para no primeiro chunk
// que fica vazio depois do filtro.
func (s *OmnisendService) BackfillAllUsers(ctx context.Context) (*BackfillReport, error) {
	report := &BackfillReport{}

	for page := 1; ; page++ {
		users, err := s.LMS.ListUsers(ctx, page, backfillChunkSize)
		if err != nil {
			return report, &TechnicalError{
				Code:    "LMS_UNAVAILABLE",
				Message: fmt.Sprintf("falha ao listar usuários (página %d): %v", page, err),
			}
		}

		var contacts []*entity.Contact
		for _, user := range users {
			if user.IsAdministrator() {
				continue
			}
			contacts = append(contacts, mapper.ContactFromUserInfo(s.userSnapshot(ctx, user)))
		}

		if len(contacts) == 0 {
			break
		}

		if err := s.Client.SendBatch(ctx, contacts, omnisend.MethodUpsert); err != nil {
			// Falha de transporte de um chunk não derruba o loop.
			// O chunk perdido fica fora dos contadores: relatório e
			// métricas contam só o que chegou no Omnisend.
			log.Printf("❌ Batch da página %d falhou, seguindo para a próxima: %v", page, err)
			continue
		}

		report.Batches++
		report.Contacts += len(contacts)
	}

	log.Printf("✅ Backfill concluído: %d contatos em %d batches", report.Contacts, report.Batches)
	return report, nil
}

// userSnapshot monta o UserInfo de um usuário com as listas de títulos.
// Erro ao buscar matrículas não aborta o backfill: o contato sai com a
// lista vazia e o próximo sync ao vivo corrige.
func (s *OmnisendService) userSnapshot(ctx context.Context, user lms.User) *entity.UserInfo {
	courses, err := s.enrollmentTitles(ctx, user.ID, s.LMS.GetStudentCourses)
	if err != nil {
		log.Printf("⚠️ Cursos do usuário %d indisponíveis: %v", user.ID, err)
	}

	memberships, err := s.enrollmentTitles(ctx, user.ID, s.LMS.GetStudentMemberships)
	if err != nil {
		log.Printf("⚠️ Memberships do usuário %d indisponíveis: %v", user.ID, err)
	}

	return &entity.UserInfo{
		Email:       user.Email,
		Phone:       user.Phone,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Address1:    user.Address1,
		Address2:    user.Address2,
		City:        user.City,
		State:       user.State,
		ZipCode:     user.ZipCode,
		Country:     user.Country,
		Courses:     courses,
		Memberships: memberships,
	}
}

func (s *OmnisendService) enrollmentTitles(
	ctx context.Context,
	userID int,
	fetch func(context.Context, int) ([]int, error),
) ([]string, error) {
	ids, err := fetch(ctx, userID)
	if err != nil {
		return []string{}, err
	}

	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		title, err := s.LMS.GetTitle(ctx, id)
		if err != nil {
			log.Printf("⚠️ Título de %d indisponível: %v", id, err)
			continue
		}
		// Post apagado volta título vazio e fica de fora da lista
		if title != "" {
			titles = append(titles, title)
		}
	}

	return titles, nil
}

// consentEnabled consulta o blob de configuração a cada operação.
// Falha na leitura cai no comportamento legado: consentimento desligado.
func (s *OmnisendService) consentEnabled(ctx context.Context) bool {
	options, err := s.Settings.GetOptions(ctx)
	if err != nil {
		log.Printf("⚠️ Falha ao ler configurações, assumindo consentimento desligado: %v", err)
		return false
	}
	return options.ConsentEnabled
}
