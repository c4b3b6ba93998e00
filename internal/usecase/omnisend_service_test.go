package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/omnisend-sync/internal/entity"
	"github.com/xavierca1/omnisend-sync/internal/infra/integration/lms"
	"github.com/xavierca1/omnisend-sync/internal/infra/integration/omnisend"
	"github.com/xavierca1/omnisend-sync/internal/mapper"
)

// MockOmnisendClient
type MockOmnisendClient struct {
	mock.Mock
}

func (m *MockOmnisendClient) SaveContact(ctx context.Context, contact *entity.Contact) (*omnisend.SaveContactResponse, error) {
	args := m.Called(ctx, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*omnisend.SaveContactResponse), args.Error(1)
}

func (m *MockOmnisendClient) GetContactByEmail(ctx context.Context, email string) (*omnisend.GetContactResponse, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*omnisend.GetContactResponse), args.Error(1)
}

func (m *MockOmnisendClient) SendBatch(ctx context.Context, contacts []*entity.Contact, method string) error {
	args := m.Called(ctx, contacts, method)
	return args.Error(0)
}

// MockLMSClient
type MockLMSClient struct {
	mock.Mock
}

func (m *MockLMSClient) GetTitle(ctx context.Context, postID int) (string, error) {
	args := m.Called(ctx, postID)
	return args.String(0), args.Error(1)
}

func (m *MockLMSClient) GetStudentCourses(ctx context.Context, userID int) ([]int, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockLMSClient) GetStudentMemberships(ctx context.Context, userID int) ([]int, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockLMSClient) ListUsers(ctx context.Context, page, perPage int) ([]lms.User, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]lms.User), args.Error(1)
}

// MockSettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetOptions(ctx context.Context) (entity.Options, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.Options), args.Error(1)
}

func newTestService() (*OmnisendService, *MockOmnisendClient, *MockLMSClient, *MockSettingsRepository) {
	client := new(MockOmnisendClient)
	lmsClient := new(MockLMSClient)
	settings := new(MockSettingsRepository)
	return NewOmnisendService(client, lmsClient, settings), client, lmsClient, settings
}

// TestCreateContactSuccess - sucesso devolve o par de identidade para o tracker
func TestCreateContactSuccess(t *testing.T) {
	svc, client, _, settings := newTestService()

	settings.On("GetOptions", mock.Anything).Return(entity.Options{ConsentEnabled: false}, nil)
	client.On("SaveContact", mock.Anything, mock.Anything).
		Return(&omnisend.SaveContactResponse{ContactID: "abc123"}, nil)

	fields := mapper.FormFields{
		mapper.FieldEmail: "aluno@example.com",
		mapper.FieldPhone: "+5511988887777",
	}

	tracker, err := svc.CreateContact(context.Background(), fields)

	assert.NoError(t, err)
	assert.NotNil(t, tracker)
	assert.Equal(t, "aluno@example.com", tracker.Email)
	assert.Equal(t, "+5511988887777", tracker.PhoneNumber)
}

// TestCreateContactValidationFailure - resposta suja devolve nil sem erro
func TestCreateContactValidationFailure(t *testing.T) {
	svc, client, _, settings := newTestService()

	settings.On("GetOptions", mock.Anything).Return(entity.Options{}, nil)
	client.On("SaveContact", mock.Anything, mock.Anything).
		Return(&omnisend.SaveContactResponse{Err: "invalid email"}, nil)

	tracker, err := svc.CreateContact(context.Background(), mapper.FormFields{
		mapper.FieldEmail: "ruim@example.com",
	})

	assert.NoError(t, err)
	assert.Nil(t, tracker)
}

// TestCreateContactTransportFailure
func TestCreateContactTransportFailure(t *testing.T) {
	svc, client, _, settings := newTestService()

	settings.On("GetOptions", mock.Anything).Return(entity.Options{}, nil)
	client.On("SaveContact", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	tracker, err := svc.CreateContact(context.Background(), mapper.FormFields{
		mapper.FieldEmail: "aluno@example.com",
	})

	assert.Nil(t, tracker)
	assert.True(t, IsTechnicalError(err))
}

// TestApplyEnrollmentChangeAdd - fetch, resolve título, grava lista nova
func TestApplyEnrollmentChangeAdd(t *testing.T) {
	svc, client, lmsClient, _ := newTestService()

	remote := &entity.Contact{Email: "aluno@example.com"}
	remote.AddCustomProperty(mapper.PropCourses, []interface{}{"Curso A"})

	client.On("GetContactByEmail", mock.Anything, "aluno@example.com").
		Return(&omnisend.GetContactResponse{Contact: remote}, nil)
	lmsClient.On("GetTitle", mock.Anything, 42).Return("Curso B", nil)

	var saved *entity.Contact
	client.On("SaveContact", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*entity.Contact)
		}).
		Return(&omnisend.SaveContactResponse{ContactID: "abc123"}, nil)

	err := svc.ApplyEnrollmentChange(context.Background(), "aluno@example.com", 42, mapper.ActionAdd)

	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, "aluno@example.com", saved.Email)
	assert.Equal(t, []string{"Curso A", "Curso B"}, saved.StringListProperty(mapper.PropCourses))
}

// TestApplyEnrollmentChangeValidationFailure
func TestApplyEnrollmentChangeValidationFailure(t *testing.T) {
	svc, client, lmsClient, _ := newTestService()

	client.On("GetContactByEmail", mock.Anything, mock.Anything).
		Return(&omnisend.GetContactResponse{Contact: &entity.Contact{Email: "a@example.com"}}, nil)
	lmsClient.On("GetTitle", mock.Anything, mock.Anything).Return("Curso X", nil)
	client.On("SaveContact", mock.Anything, mock.Anything).
		Return(&omnisend.SaveContactResponse{}, nil)

	err := svc.ApplyEnrollmentChange(context.Background(), "a@example.com", 1, mapper.ActionAdd)

	assert.True(t, IsDomainError(err))
}

// TestApplyMembershipChangeRemove
func TestApplyMembershipChangeRemove(t *testing.T) {
	svc, client, lmsClient, _ := newTestService()

	remote := &entity.Contact{Email: "a@example.com"}
	remote.AddCustomProperty(mapper.PropMemberships, []interface{}{"Premium", "VIP"})

	client.On("GetContactByEmail", mock.Anything, "a@example.com").
		Return(&omnisend.GetContactResponse{Contact: remote}, nil)
	lmsClient.On("GetTitle", mock.Anything, 9).Return("VIP", nil)

	var saved *entity.Contact
	client.On("SaveContact", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*entity.Contact)
		}).
		Return(&omnisend.SaveContactResponse{ContactID: "abc123"}, nil)

	err := svc.ApplyMembershipChange(context.Background(), "a@example.com", 9, mapper.ActionRemove)

	assert.NoError(t, err)
	assert.Equal(t, []string{"Premium"}, saved.StringListProperty(mapper.PropMemberships))
}

// TestConsentSnapshot
func TestConsentSnapshot(t *testing.T) {
	svc, client, _, _ := newTestService()

	remote := &entity.Contact{
		Email:       "a@example.com",
		EmailStatus: entity.StatusSubscribed,
		PhoneStatus: entity.StatusUnsubscribed,
	}
	client.On("GetContactByEmail", mock.Anything, "a@example.com").
		Return(&omnisend.GetContactResponse{Contact: remote}, nil)

	snapshot := svc.ConsentSnapshot(context.Background(), "a@example.com")

	assert.Equal(t, entity.StatusSubscribed, snapshot.Email)
	assert.Equal(t, entity.StatusUnsubscribed, snapshot.SMS)
}

// TestConsentSnapshotNoSession - sem email, snapshot zerado sem chamada remota
func TestConsentSnapshotNoSession(t *testing.T) {
	svc, client, _, _ := newTestService()

	snapshot := svc.ConsentSnapshot(context.Background(), "")

	assert.Empty(t, snapshot.Email)
	assert.Empty(t, snapshot.SMS)
	client.AssertNotCalled(t, "GetContactByEmail")
}

// TestUpdateConsentSynthesizesFlags - subscribed remoto vira flag presente no update
func TestUpdateConsentSynthesizesFlags(t *testing.T) {
	svc, client, _, settings := newTestService()

	settings.On("GetOptions", mock.Anything).Return(entity.Options{ConsentEnabled: true}, nil)

	remote := &entity.Contact{
		Email:       "a@example.com",
		EmailStatus: entity.StatusSubscribed,
		PhoneStatus: entity.StatusUnsubscribed,
	}
	client.On("GetContactByEmail", mock.Anything, "a@example.com").
		Return(&omnisend.GetContactResponse{Contact: remote}, nil)

	var saved *entity.Contact
	client.On("SaveContact", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*entity.Contact)
		}).
		Return(&omnisend.SaveContactResponse{ContactID: "abc123"}, nil)

	svc.UpdateConsent(context.Background(), mapper.FormFields{
		mapper.FieldFirstName: "Maria",
	}, "a@example.com")

	assert.NotNil(t, saved)
	assert.Equal(t, entity.StatusSubscribed, saved.EmailStatus)
	assert.Equal(t, entity.StatusUnsubscribed, saved.PhoneStatus)
	assert.Equal(t, "a@example.com", saved.Email)
}

// TestUpdateConsentNilFields - reconcile sem fields no body (map nil) não
// pode quebrar: as flags entram numa cópia nova
func TestUpdateConsentNilFields(t *testing.T) {
	svc, client, _, settings := newTestService()

	settings.On("GetOptions", mock.Anything).Return(entity.Options{ConsentEnabled: true}, nil)

	remote := &entity.Contact{
		Email:       "a@example.com",
		EmailStatus: entity.StatusSubscribed,
	}
	client.On("GetContactByEmail", mock.Anything, "a@example.com").
		Return(&omnisend.GetContactResponse{Contact: remote}, nil)

	var saved *entity.Contact
	client.On("SaveContact", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*entity.Contact)
		}).
		Return(&omnisend.SaveContactResponse{ContactID: "abc123"}, nil)

	assert.NotPanics(t, func() {
		svc.UpdateConsent(context.Background(), nil, "a@example.com")
	})
	assert.NotNil(t, saved)
	assert.Equal(t, entity.StatusSubscribed, saved.EmailStatus)
	assert.Equal(t, entity.StatusUnsubscribed, saved.PhoneStatus)
}

// TestUpdateConsentDoesNotMutateCaller - o map do caller sai intacto
func TestUpdateConsentDoesNotMutateCaller(t *testing.T) {
	svc, client, _, settings := newTestService()

	settings.On("GetOptions", mock.Anything).Return(entity.Options{ConsentEnabled: true}, nil)

	remote := &entity.Contact{
		Email:       "a@example.com",
		EmailStatus: entity.StatusSubscribed,
		PhoneStatus: entity.StatusSubscribed,
	}
	client.On("GetContactByEmail", mock.Anything, "a@example.com").
		Return(&omnisend.GetContactResponse{Contact: remote}, nil)
	client.On("SaveContact", mock.Anything, mock.Anything).
		Return(&omnisend.SaveContactResponse{ContactID: "abc123"}, nil)

	fields := mapper.FormFields{mapper.FieldFirstName: "Maria"}
	svc.UpdateConsent(context.Background(), fields, "a@example.com")

	assert.Equal(t, mapper.FormFields{mapper.FieldFirstName: "Maria"}, fields)
}

func makeUsers(count, startID int, admin bool) []lms.User {
	users := make([]lms.User, 0, count)
	for i := 0; i < count; i++ {
		roles := []string{"student"}
		if admin {
			roles = []string{"administrator"}
		}
		users = append(users, lms.User{
			ID:    startID + i,
			Email: fmt.Sprintf("user%d@example.com", startID+i),
			Roles: roles,
		})
	}
	return users
}

// TestBackfillChunking - 125 usuários não-admin = exatamente 3 batches (60, 60, 5)
func TestBackfillChunking(t *testing.T) {
	svc, client, lmsClient, _ := newTestService()

	lmsClient.On("ListUsers", mock.Anything, 1, 60).Return(makeUsers(60, 1, false), nil)
	lmsClient.On("ListUsers", mock.Anything, 2, 60).Return(makeUsers(60, 61, false), nil)
	lmsClient.On("ListUsers", mock.Anything, 3, 60).Return(makeUsers(5, 121, false), nil)
	lmsClient.On("ListUsers", mock.Anything, 4, 60).Return([]lms.User{}, nil)

	lmsClient.On("GetStudentCourses", mock.Anything, mock.Anything).Return([]int{}, nil)
	lmsClient.On("GetStudentMemberships", mock.Anything, mock.Anything).Return([]int{}, nil)

	var batchSizes []int
	client.On("SendBatch", mock.Anything, mock.Anything, omnisend.MethodUpsert).
		Run(func(args mock.Arguments) {
			batchSizes = append(batchSizes, len(args.Get(1).([]*entity.Contact)))
		}).
		Return(nil)

	report, err := svc.BackfillAllUsers(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []int{60, 60, 5}, batchSizes)
	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, 125, report.Contacts)
	client.AssertNumberOfCalls(t, "SendBatch", 3)
}

// TestBackfillExcludesAdministrators - admin nunca aparece em batch nenhum
func TestBackfillExcludesAdministrators(t *testing.T) {
	svc, client, lmsClient, _ := newTestService()

	page1 := append(makeUsers(2, 1, false), makeUsers(1, 100, true)...)
	lmsClient.On("ListUsers", mock.Anything, 1, 60).Return(page1, nil)
	// Página só com admins encerra o loop mesmo que existam mais páginas
	lmsClient.On("ListUsers", mock.Anything, 2, 60).Return(makeUsers(1, 200, true), nil)

	lmsClient.On("GetStudentCourses", mock.Anything, mock.Anything).Return([]int{}, nil)
	lmsClient.On("GetStudentMemberships", mock.Anything, mock.Anything).Return([]int{}, nil)

	var batches [][]*entity.Contact
	client.On("SendBatch", mock.Anything, mock.Anything, omnisend.MethodUpsert).
		Run(func(args mock.Arguments) {
			batches = append(batches, args.Get(1).([]*entity.Contact))
		}).
		Return(nil)

	report, err := svc.BackfillAllUsers(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Batches)
	assert.Len(t, batches, 1)
	for _, contact := range batches[0] {
		assert.NotEqual(t, "user100@example.com", contact.Email)
		assert.NotEqual(t, "user200@example.com", contact.Email)
	}
}

// TestBackfillFailedChunkIsSkipped - falha de transporte num chunk não derruba
// o loop, e o chunk perdido fica fora dos contadores do relatório
func TestBackfillFailedChunkIsSkipped(t *testing.T) {
	svc, client, lmsClient, _ := newTestService()

	lmsClient.On("ListUsers", mock.Anything, 1, 60).Return(makeUsers(60, 1, false), nil)
	lmsClient.On("ListUsers", mock.Anything, 2, 60).Return(makeUsers(2, 61, false), nil)
	lmsClient.On("ListUsers", mock.Anything, 3, 60).Return([]lms.User{}, nil)

	lmsClient.On("GetStudentCourses", mock.Anything, mock.Anything).Return([]int{}, nil)
	lmsClient.On("GetStudentMemberships", mock.Anything, mock.Anything).Return([]int{}, nil)

	client.On("SendBatch", mock.Anything, mock.Anything, omnisend.MethodUpsert).
		Return(errors.New("timeout")).Once()
	client.On("SendBatch", mock.Anything, mock.Anything, omnisend.MethodUpsert).
		Return(nil).Once()

	report, err := svc.BackfillAllUsers(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 2, report.Contacts)
	client.AssertNumberOfCalls(t, "SendBatch", 2)
}

// TestBackfillResolvesEnrollmentTitles - snapshot carrega títulos, não IDs
func TestBackfillResolvesEnrollmentTitles(t *testing.T) {
	svc, client, lmsClient, _ := newTestService()

	lmsClient.On("ListUsers", mock.Anything, 1, 60).Return(makeUsers(1, 1, false), nil)
	lmsClient.On("ListUsers", mock.Anything, 2, 60).Return([]lms.User{}, nil)

	lmsClient.On("GetStudentCourses", mock.Anything, 1).Return([]int{10, 11}, nil)
	lmsClient.On("GetStudentMemberships", mock.Anything, 1).Return([]int{20}, nil)
	lmsClient.On("GetTitle", mock.Anything, 10).Return("Curso de Go", nil)
	lmsClient.On("GetTitle", mock.Anything, 11).Return("", nil) // post apagado
	lmsClient.On("GetTitle", mock.Anything, 20).Return("Premium", nil)

	var batch []*entity.Contact
	client.On("SendBatch", mock.Anything, mock.Anything, omnisend.MethodUpsert).
		Run(func(args mock.Arguments) {
			batch = args.Get(1).([]*entity.Contact)
		}).
		Return(nil)

	_, err := svc.BackfillAllUsers(context.Background())

	assert.NoError(t, err)
	assert.Len(t, batch, 1)
	assert.Equal(t, []string{"Curso de Go"}, batch[0].StringListProperty(mapper.PropCourses))
	assert.Equal(t, []string{"Premium"}, batch[0].StringListProperty(mapper.PropMemberships))
}
