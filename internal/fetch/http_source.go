package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// HTTPSource reads member pages from the upstream membership API.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource builds a client for baseURL with a per-request timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type pagePayload struct {
	Content       []memberPayload `json:"content"`
	PageNumber    int             `json:"pageNumber"`
	TotalPages    int             `json:"totalPages"`
	TotalElements int64           `json:"totalElements"`
}

type memberPayload struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Mobile         string `json:"mobile"`
	Sambhag        string `json:"sambhag"`
	District       string `json:"district"`
	Block          string `json:"block"`
	MembershipType string `json:"membershipType"`
	Status         string `json:"status"`
	Remark         string `json:"remark"`
}

// FetchPage implements PageSource.
func (s *HTTPSource) FetchPage(ctx context.Context, req PageRequest) (Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(req.Page))
	query.Set("size", strconv.Itoa(req.Size))
	if req.Scope.Sambhag != "" {
		query.Set("sambhag", req.Scope.Sambhag)
	}
	if req.Scope.District != "" {
		query.Set("district", req.Scope.District)
	}
	if req.Scope.Block != "" {
		query.Set("block", req.Scope.Block)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("build member request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		return Page{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Page{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var payload pagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		return Page{}, fmt.Errorf("%w: decode page: %v", ErrUpstream, err)
	}

	page := Page{
		Content:       make([]domain.Member, 0, len(payload.Content)),
		PageNumber:    payload.PageNumber,
		TotalPages:    payload.TotalPages,
		TotalElements: payload.TotalElements,
	}
	for _, m := range payload.Content {
		page.Content = append(page.Content, m.toDomain())
	}
	return page, nil
}

func (m memberPayload) toDomain() domain.Member {
	phone := m.Phone
	if phone == "" {
		phone = m.Mobile
	}
	status := domain.MemberStatusInactive
	if strings.EqualFold(m.Status, string(domain.MemberStatusActive)) {
		status = domain.MemberStatusActive
	}
	return domain.Member{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          phone,
		Sambhag:        m.Sambhag,
		District:       m.District,
		Block:          m.Block,
		MembershipType: m.MembershipType,
		Status:         status,
		Remark:         m.Remark,
	}
}
