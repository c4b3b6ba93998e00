package omnisend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/xavierca1/omnisend-sync/internal/entity"
)

const DefaultBaseURL = "https://api.omnisend.com/v5"

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SaveContact: upsert de um contato único. Erro de rede volta como error;
// erro de negócio da API volta dentro do response para o validator olhar.
func (c *Client) SaveContact(ctx context.Context, contact *entity.Contact) (*SaveContactResponse, error) {
	endpoint := fmt.Sprintf("%s/contacts", c.baseURL)

	payload := toContactRequest(contact)
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("erro ao marshal contato: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request omnisend: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SaveContactResponse{Err: decodeAPIError(resp.StatusCode, body)}, nil
	}

	var response contactResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("erro decode omnisend: %w", err)
	}

	return &SaveContactResponse{ContactID: response.ContactID}, nil
}

// GetContactByEmail busca o contato remoto pela identidade primária (email)
func (c *Client) GetContactByEmail(ctx context.Context, email string) (*GetContactResponse, error) {
	endpoint := fmt.Sprintf("%s/contacts?email=%s", c.baseURL, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request omnisend: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GetContactResponse{Err: decodeAPIError(resp.StatusCode, body)}, nil
	}

	var response listContactsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("erro decode omnisend: %w", err)
	}

	if len(response.Contacts) == 0 {
		return &GetContactResponse{Err: fmt.Sprintf("contato não encontrado: %s", email)}, nil
	}

	return &GetContactResponse{Contact: fromContactResponse(response.Contacts[0])}, nil
}

// SendBatch submete um lote inteiro numa chamada só (limite da API: 1000
// itens, mas o service fatia bem antes disso). Sem ack por item: o lote
// passa ou falha como um todo.
func (c *Client) SendBatch(ctx context.Context, contacts []*entity.Contact, method string) error {
	endpoint := fmt.Sprintf("%s/batches", c.baseURL)

	items := make([]contactRequest, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, toContactRequest(contact))
	}

	payload := batchRequest{
		Method:   method,
		Endpoint: "contacts",
		Items:    items,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request omnisend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erro batch omnisend (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func decodeAPIError(status int, body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return fmt.Sprintf("omnisend respondeu status %d", status)
}

func toContactRequest(c *entity.Contact) contactRequest {
	return contactRequest{
		Email:            c.Email,
		Phone:            c.Phone,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Address:          c.Address,
		City:             c.City,
		State:            c.State,
		PostalCode:       c.PostalCode,
		Country:          c.Country,
		EmailConsent:     c.EmailConsent,
		EmailStatus:      c.EmailStatus,
		PhoneConsent:     c.PhoneConsent,
		PhoneStatus:      c.PhoneStatus,
		Tags:             c.Tags,
		CustomProperties: c.CustomProperties,
		SendWelcomeEmail: c.WelcomeEmail,
	}
}

func fromContactResponse(r contactResponse) *entity.Contact {
	return &entity.Contact{
		Email:            r.Email,
		Phone:            r.Phone,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Address:          r.Address,
		City:             r.City,
		State:            r.State,
		PostalCode:       r.PostalCode,
		Country:          r.Country,
		EmailStatus:      r.EmailStatus,
		PhoneStatus:      r.PhoneStatus,
		Tags:             r.Tags,
		CustomProperties: r.CustomProperties,
	}
}
