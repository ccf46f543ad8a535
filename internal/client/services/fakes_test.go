package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/perfumekeeper/internal/client/client"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/models"
)

type memSessions struct {
	data   map[string][]byte
	setErr error
}

func newMemSessions() *memSessions { return &memSessions{data: map[string][]byte{}} }

func (m *memSessions) Get(_ context.Context, key string) ([]byte, error) { return m.data[key], nil }
func (m *memSessions) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}
func (m *memSessions) Delete(_ context.Context, key string) error { delete(m.data, key); return nil }
func (m *memSessions) Clear(context.Context) error {
	m.data = map[string][]byte{}
	return nil
}

// fakeAPI records the token each call was made with.
type fakeAPI struct {
	token    string
	loginErr error
	callErr  error

	gotToken string
	gotID    int64
	items    []models.Perfume
}

func (f *fakeAPI) Register(_ context.Context, name, email, _ string) (*models.Account, error) {
	return &models.Account{ID: 1, Name: name, Email: email, IsActive: true}, nil
}

func (f *fakeAPI) Login(context.Context, string, string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAPI) ListPerfumes(_ context.Context, token string) ([]models.Perfume, error) {
	f.gotToken = token
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.items, nil
}

func (f *fakeAPI) CreatePerfume(_ context.Context, token string, d models.PerfumeDraft) (*models.Perfume, error) {
	f.gotToken = token
	if f.callErr != nil {
		return nil, f.callErr
	}
	return &models.Perfume{ID: 10, Name: d.Name, Brand: d.Brand, Stock: d.Stock, Price: d.Price}, nil
}

func (f *fakeAPI) UpdatePerfume(_ context.Context, token string, id int64, c models.PerfumeChanges) (*models.Perfume, error) {
	f.gotToken, f.gotID = token, id
	if f.callErr != nil {
		return nil, f.callErr
	}
	p := &models.Perfume{ID: id, Name: "Aqua"}
	if c.Stock != nil {
		p.Stock = *c.Stock
	}
	return p, nil
}

func (f *fakeAPI) DeletePerfume(_ context.Context, token string, id int64) error {
	f.gotToken, f.gotID = token, id
	return f.callErr
}

var (
	errExpired = &client.APIError{Status: http.StatusUnauthorized, Code: "NOT_AUTHENTICATED", Message: "token has expired"}
	errBoom    = errors.New("boom")
)
