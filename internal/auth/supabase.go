package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// Supabase signs in with the password grant of a Supabase (GoTrue) project.
type Supabase struct {
	baseURL string
	apiKey  string
	ttl     time.Duration
	client  *http.Client
	now     func() time.Time
}

func NewSupabase(baseURL, apiKey string, ttl time.Duration) *Supabase {
	return &Supabase{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		ttl:     ttl,
		client:  &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (r tokenResponse) message() string {
	for _, m := range []string{r.ErrorDescription, r.Msg, r.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

func (s *Supabase) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrAuthentication, err)
	}

	var out tokenResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: status %d", domain.ErrAuthentication, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || out.AccessToken == "" {
		msg := out.message()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthentication, msg)
	}

	ttl := s.ttl
	if out.ExpiresIn > 0 && (ttl <= 0 || time.Duration(out.ExpiresIn)*time.Second < ttl) {
		ttl = time.Duration(out.ExpiresIn) * time.Second
	}
	userEmail := out.User.Email
	if userEmail == "" {
		userEmail = email
	}
	return &domain.Session{
		Token:     out.AccessToken,
		UserID:    out.User.ID,
		Email:     userEmail,
		ExpiresAt: s.now().Add(ttl),
	}, nil
}
