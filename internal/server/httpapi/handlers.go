package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/models"
)

const maxBodyBytes = 1 << 20

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type PerfumeService interface {
	List(ctx context.Context, ownerID int64) ([]models.Perfume, error)
	Create(ctx context.Context, ownerID int64, in models.PerfumeInput) (*models.Perfume, error)
	Update(ctx context.Context, ownerID, id int64, patch models.PerfumePatch) (*models.Perfume, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreatePerfumeRequest uses pointers so missing required fields can be told
// apart from zero values.
type CreatePerfumeRequest struct {
	Name        *string  `json:"name"`
	Brand       *string  `json:"brand"`
	Description *string  `json:"description"`
	Stock       *int     `json:"stock"`
	Price       *float64 `json:"price"`
}

func (r CreatePerfumeRequest) toInput() (models.PerfumeInput, error) {
	if r.Name == nil || r.Brand == nil || r.Stock == nil || r.Price == nil {
		return models.PerfumeInput{}, validationError("name, brand, stock and price are required")
	}
	return models.PerfumeInput{
		Name:        *r.Name,
		Brand:       *r.Brand,
		Description: r.Description,
		Stock:       *r.Stock,
		Price:       *r.Price,
	}, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return validationError("request body is empty")
		}
		return validationError("malformed JSON body: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("perfume id must be a positive integer")
	}
	return id, nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(r.Context(), w, s.logger, validationError("email and password are required"))
		return
	}
	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: common.TokenType})
}

// currentUser is only called behind RequireUser; a missing user there is a
// wiring bug and surfaces as SERVER_ERROR.
func (s *Server) currentUser(r *http.Request) (*models.User, error) {
	u, ok := UserFrom(r.Context())
	if !ok {
		return nil, errors.New("no authenticated user in context")
	}
	return u, nil
}

func (s *Server) listPerfumes(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	items, err := s.perfumes.List(r.Context(), u.ID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createPerfume(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	var req CreatePerfumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	p, err := s.perfumes.Create(r.Context(), u.ID, in)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updatePerfume(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	var patch models.PerfumePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	p, err := s.perfumes.Update(r.Context(), u.ID, id, patch)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePerfume(w http.ResponseWriter, r *http.Request) {
	u, err := s.currentUser(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	if err := s.perfumes.Delete(r.Context(), u.ID, id); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "perfume deleted"})
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName, Version: Version})
}
