package usecase

import (
	"context"

	"github.com/xavierca1/omnisend-sync/internal/entity"
	"github.com/xavierca1/omnisend-sync/internal/infra/integration/lms"
	"github.com/xavierca1/omnisend-sync/internal/infra/integration/omnisend"
)

type TrackerData struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// ConsentSnapshot é o status remoto de inscrição por canal,
// usado para pré-marcar os checkboxes do formulário de perfil
type ConsentSnapshot struct {
	Email string `json:"email"`
	SMS   string `json:"sms"`
}

// BackfillReport resume uma rodada de backfill para log e relatório
type BackfillReport struct {
	Contacts int
	Batches  int
}

type OmnisendClientInterface interface {
	SaveContact(ctx context.Context, contact *entity.Contact) (*omnisend.SaveContactResponse, error)
	GetContactByEmail(ctx context.Context, email string) (*omnisend.GetContactResponse, error)
	SendBatch(ctx context.Context, contacts []*entity.Contact, method string) error
}

type LMSClientInterface interface {
	GetTitle(ctx context.Context, postID int) (string, error)
	GetStudentCourses(ctx context.Context, userID int) ([]int, error)
	GetStudentMemberships(ctx context.Context, userID int) ([]int, error)
	ListUsers(ctx context.Context, page, perPage int) ([]lms.User, error)
}

type SettingsRepositoryInterface interface {
	GetOptions(ctx context.Context) (entity.Options, error)
}
