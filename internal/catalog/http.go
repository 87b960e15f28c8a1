package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ProductAPI/pkg/kit"
)

// Version is reported by the health and root endpoints.
const Version = "1.0.0"

const maxBodyBytes = 1 << 20

var validate = validator.New()

type Server struct {
	Store  Store
	Images *Ingestor
	Status *StatusClient
	Log    *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.root)
	r.Get("/health", s.health)
	r.Get("/readyz", s.readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/github-status", s.externalStatus)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.list)
			r.Post("/", s.create)
			r.Get("/{id}", s.get)
			r.Put("/{id}", s.update)
			r.Delete("/{id}", s.delete)
			r.Post("/{id}/image", s.uploadImage)
		})
	})

	if s.Images != nil {
		fs := http.StripPrefix(s.Images.PublicPath+"/", http.FileServer(http.Dir(s.Images.Dir)))
		r.Method(http.MethodGet, s.Images.PublicPath+"/*", fs)
	}

	return r
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Product API Demo",
		"version": Version,
		"docs":    "/docs",
		"health":  "/health",
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

type createProductReq struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	InStock     *bool   `json:"in_stock"`
}

type updateProductReq struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	InStock     *bool    `json:"in_stock"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseListQuery(r.URL.Query())
	if err != nil {
		kit.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	products, err := s.Store.List(r.Context())
	if err != nil {
		s.serverError(w, "list products failed", err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, Paginate(filter.Apply(products), page))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}

	p, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, id, "get product failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		kit.WriteError(w, http.StatusUnprocessableEntity, "validation failed")
		return
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	p, err := s.Store.Create(r.Context(), ProductFields{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		InStock:     inStock,
	})
	if err != nil {
		s.serverError(w, "create product failed", err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}

	var req updateProductReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		kit.WriteError(w, http.StatusUnprocessableEntity, "validation failed")
		return
	}

	p, err := s.Store.Update(r.Context(), id, ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		InStock:     req.InStock,
	})
	if err != nil {
		s.storeError(w, id, "update product failed", err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.storeError(w, id, "delete product failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.productID(w, r)
	if !ok {
		return
	}

	// Existence first, so an unknown id is 404 even with a bad upload.
	if _, err := s.Store.Get(r.Context(), id); err != nil {
		s.storeError(w, id, "upload image failed", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		kit.WriteError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	publicURL, err := s.Images.Ingest(id, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, ErrUnsupportedImageType) {
			kit.WriteError(w, http.StatusBadRequest, "unsupported image format")
			return
		}
		s.serverErrorWith(w, "image processing failed", "image ingestion failed", err)
		return
	}

	p, err := s.Store.SetImage(r.Context(), id, publicURL)
	if err != nil {
		s.storeError(w, id, "record image failed", err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, p)
}

type externalStatusResp struct {
	ExternalService string `json:"external_service"`
	Status          string `json:"status"`
	StatusCode      int    `json:"status_code"`
	CheckedAt       string `json:"checked_at"`
}

func (s *Server) externalStatus(w http.ResponseWriter, r *http.Request) {
	code, err := s.Status.Check(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("external status check failed", zap.Error(err))
		}
		kit.WriteError(w, http.StatusServiceUnavailable, "failed to reach external service")
		return
	}

	kit.WriteJSON(w, http.StatusOK, externalStatusResp{
		ExternalService: "GitHub API",
		Status:          "reachable",
		StatusCode:      code,
		CheckedAt:       time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		kit.WriteError(w, http.StatusUnprocessableEntity, "product id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (s *Server) storeError(w http.ResponseWriter, id int64, logMsg string, err error) {
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, http.StatusNotFound, fmt.Sprintf("Product with id %d not found", id))
		return
	}
	s.serverError(w, logMsg, err)
}

func (s *Server) serverError(w http.ResponseWriter, logMsg string, err error) {
	s.serverErrorWith(w, "server error", logMsg, err)
}

func (s *Server) serverErrorWith(w http.ResponseWriter, clientMsg, logMsg string, err error) {
	if s.Log != nil {
		s.Log.Error(logMsg, zap.Error(err))
	}
	kit.WriteError(w, http.StatusInternalServerError, clientMsg)
}

func parseListQuery(q url.Values) (Filter, Page, error) {
	var f Filter

	if v := q.Get("in_stock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, Page{}, errors.New("in_stock must be a boolean")
		}
		f.InStock = &b
	}
	if v := q.Get("min_price"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, Page{}, errors.New("min_price must be a number")
		}
		f.MinPrice = &n
	}
	if v := q.Get("max_price"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, Page{}, errors.New("max_price must be a number")
		}
		f.MaxPrice = &n
	}

	page := Page{Number: 1, Size: DefaultPageSize}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, page, errors.New("page must be an integer")
		}
		page.Number = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, page, errors.New("page_size must be an integer")
		}
		page.Size = n
	}
	if err := page.Validate(); err != nil {
		return f, page, err
	}

	return f, page, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}
