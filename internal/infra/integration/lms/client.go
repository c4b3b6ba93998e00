package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Quantos IDs de matrícula pedimos por página ao WordPress
const enrollmentPageSize = 50

// Client fala com os endpoints REST que o plugin companheiro expõe no
// WordPress (namespace llms-bridge/v1). Autenticação via application
// password do WP (basic auth).
type Client struct {
	baseURL string
	user    string
	appPass string
	http    *http.Client
}

func NewClient(baseURL, user, appPass string) *Client {
	return &Client{
		baseURL: baseURL,
		user:    user,
		appPass: appPass,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// GetTitle resolve o título legível de um curso/membership pelo ID do post.
// Post apagado volta título vazio, sem erro — quem chama decide o que fazer.
func (c *Client) GetTitle(ctx context.Context, postID int) (string, error) {
	endpoint := fmt.Sprintf("%s/wp-json/llms-bridge/v1/titles/%d", c.baseURL, postID)

	var response titleResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return "", err
	}

	return response.Title, nil
}

// GetStudentCourses devolve todos os IDs de cursos do aluno,
// paginando internamente até a página vir curta
func (c *Client) GetStudentCourses(ctx context.Context, userID int) ([]int, error) {
	return c.enrollmentIDs(ctx, userID, "courses")
}

// GetStudentMemberships devolve todos os IDs de memberships do aluno
func (c *Client) GetStudentMemberships(ctx context.Context, userID int) ([]int, error) {
	return c.enrollmentIDs(ctx, userID, "memberships")
}

func (c *Client) enrollmentIDs(ctx context.Context, userID int, kind string) ([]int, error) {
	var all []int

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf(
			"%s/wp-json/llms-bridge/v1/students/%d/%s?page=%d&per_page=%d",
			c.baseURL, userID, kind, page, enrollmentPageSize,
		)

		var response enrollmentsResponse
		if err := c.getJSON(ctx, endpoint, &response); err != nil {
			return nil, err
		}

		all = append(all, response.IDs...)

		if len(response.IDs) < enrollmentPageSize {
			break
		}
	}

	return all, nil
}

// ListUsers devolve uma página de usuários do WordPress com o meta de
// billing já embutido. O backfill varre página por página daqui.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]User, error) {
	endpoint := fmt.Sprintf(
		"%s/wp-json/llms-bridge/v1/users?page=%d&per_page=%d",
		c.baseURL, page, perPage,
	)

	var response listUsersResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return response.Users, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.user, c.appPass)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request lms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erro lms (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("erro decode lms: %w", err)
	}

	return nil
}
