package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/perfumekeeper/internal/client/client"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/models"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/perfumekeeper/internal/logging"

	_ "modernc.org/sqlite"
)

// stubAPI keeps perfumes in a slice and accepts one account.
type stubAPI struct {
	email, password string
	rejectToken     bool

	items   []models.Perfume
	nextID  int64
	changes []models.PerfumeChanges
}

func (s *stubAPI) Register(_ context.Context, name, email, password string) (*models.Account, error) {
	if s.email == email {
		return nil, &client.APIError{Status: http.StatusBadRequest, Code: "USER_EXISTS", Message: "email is already registered"}
	}
	s.email, s.password = email, password
	return &models.Account{ID: 1, Name: name, Email: email, IsActive: true}, nil
}

func (s *stubAPI) Login(_ context.Context, email, password string) (string, error) {
	if email != s.email || password != s.password {
		return "", &client.APIError{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS", Message: "invalid credentials"}
	}
	return "tok", nil
}

func (s *stubAPI) check(token string) error {
	if s.rejectToken || token != "tok" {
		return &client.APIError{Status: http.StatusUnauthorized, Code: "NOT_AUTHENTICATED", Message: "token has expired"}
	}
	return nil
}

func (s *stubAPI) ListPerfumes(_ context.Context, token string) ([]models.Perfume, error) {
	if err := s.check(token); err != nil {
		return nil, err
	}
	return s.items, nil
}

func (s *stubAPI) CreatePerfume(_ context.Context, token string, d models.PerfumeDraft) (*models.Perfume, error) {
	if err := s.check(token); err != nil {
		return nil, err
	}
	s.nextID++
	p := models.Perfume{ID: s.nextID, Name: d.Name, Brand: d.Brand, Description: d.Description, Stock: d.Stock, Price: d.Price}
	s.items = append(s.items, p)
	return &p, nil
}

func (s *stubAPI) UpdatePerfume(_ context.Context, token string, id int64, c models.PerfumeChanges) (*models.Perfume, error) {
	if err := s.check(token); err != nil {
		return nil, err
	}
	s.changes = append(s.changes, c)
	for i := range s.items {
		if s.items[i].ID == id {
			if c.Stock != nil {
				s.items[i].Stock = *c.Stock
			}
			return &s.items[i], nil
		}
	}
	return nil, &client.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "perfume not found"}
}

func (s *stubAPI) DeletePerfume(_ context.Context, token string, id int64) error {
	if err := s.check(token); err != nil {
		return err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "perfume not found"}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newSessionRepo(t *testing.T) *session.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE session (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return session.NewSQLiteRepository(db)
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func runScript(t *testing.T, api *stubAPI, health pinger, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp(api, newSessionRepo(t), health, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, logging.Nop{})
	require.NoError(t, app.Run(context.Background()))
	return out.String()
}

func TestApp_RegisterLoginAddListUpdateDelete(t *testing.T) {
	stubPassword(t, "pw")
	api := &stubAPI{}

	out := runScript(t, api, stubPinger{},
		"register", "Ana", "ana@x.io",
		"login", "ana@x.io",
		"add", "Aqua", "Maison", "", "5", "49.90",
		"list",
		"update 1", "", "", "-", "2", "",
		"update", "1", "", "", "", "", "",
		"delete 1",
		"delete 1",
		"exit",
	)

	assert.Contains(t, out, "Registered ana@x.io with id 1")
	assert.Contains(t, out, "Logged in as ana@x.io")
	assert.Contains(t, out, "Added perfume 1")
	assert.Contains(t, out, "Aqua")
	assert.Contains(t, out, "49.90")
	assert.Contains(t, out, "Updated perfume 1")
	assert.Contains(t, out, "Nothing to change")
	assert.Contains(t, out, "Deleted perfume 1")
	assert.Contains(t, out, "error: perfume not found")
	assert.Contains(t, out, "pk(ana@x.io)> ")

	require.Len(t, api.changes, 1)
	assert.True(t, api.changes[0].ClearDescription)
	require.NotNil(t, api.changes[0].Stock)
	assert.Equal(t, 2, *api.changes[0].Stock)
	assert.Nil(t, api.changes[0].Price)
}

func TestApp_CommandsBeforeLogin(t *testing.T) {
	out := runScript(t, &stubAPI{}, stubPinger{}, "list", "delete 3", "exit")

	assert.Equal(t, 2, strings.Count(out, "error: not logged in, use 'login' first"))
}

func TestApp_WrongPassword(t *testing.T) {
	stubPassword(t, "bad")
	out := runScript(t, &stubAPI{email: "ana@x.io", password: "pw"}, stubPinger{}, "login", "ana@x.io", "list")

	assert.Contains(t, out, "error: invalid credentials")
	assert.Contains(t, out, "error: not logged in")
}

func TestApp_ExpiredTokenLogsOut(t *testing.T) {
	stubPassword(t, "pw")
	api := &stubAPI{email: "ana@x.io", password: "pw"}
	var out bytes.Buffer
	app := newApp(api, newSessionRepo(t), stubPinger{}, strings.NewReader("login\nana@x.io\n"), &out, logging.Nop{})
	require.NoError(t, app.Run(context.Background()))
	require.True(t, app.isLoggedIn(context.Background()))

	api.rejectToken = true
	err := app.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "token has expired; please log in again", describe(err))
	assert.False(t, app.isLoggedIn(context.Background()))
}

func TestApp_BadID(t *testing.T) {
	out := runScript(t, &stubAPI{}, stubPinger{}, "delete abc")

	assert.Contains(t, out, `error: invalid id "abc"`)
}

func TestApp_Health(t *testing.T) {
	out := runScript(t, &stubAPI{}, stubPinger{}, "health")
	assert.Contains(t, out, "Server is serving")

	out = runScript(t, &stubAPI{}, stubPinger{err: client.ErrUnavailable}, "health")
	assert.Contains(t, out, "error: server unavailable")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "server returned 502", describe(&client.APIError{Status: http.StatusBadGateway}))
	assert.Equal(t, "boom", describe(errors.New("boom")))
}
