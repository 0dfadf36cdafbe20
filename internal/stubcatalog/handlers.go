package stubcatalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/ginzapet/storefront/internal/catalog"
	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
	"github.com/ginzapet/storefront/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxProofBytes = 10 << 20

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	categories := s.categories
	s.mu.RUnlock()
	s.writeSuccess(w, http.StatusOK, categories)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	category, ok := s.category(slug)
	if !ok {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeNotFound, "category not found"))
		return
	}
	s.writeSuccess(w, http.StatusOK, category)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	popularOnly := r.URL.Query().Get("is_popular") == "1"
	s.writeSuccess(w, http.StatusOK, s.listProducts(limit, popularOnly))
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	product, ok := s.product(slug)
	if !ok {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
		return
	}
	s.writeSuccess(w, http.StatusOK, product)
}

func (s *Server) handleCheckBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		BookingTrxID string `json:"booking_trx_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
		return
	}
	if body.Email == "" || body.BookingTrxID == "" {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeValidation, "email and booking_trx_id are required"))
		return
	}

	order, ok := s.findOrder(body.Email, body.BookingTrxID)
	if !ok {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found"))
		return
	}
	s.writeSuccess(w, http.StatusOK, order)
}

var productIDField = regexp.MustCompile(`^product_ids\[(\d+)\]$`)

func (s *Server) handleOrderTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProofBytes); err != nil {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
		return
	}

	proof, header, err := r.FormFile("proof")
	if err != nil {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeValidation, "proof file is required"))
		return
	}
	proof.Close()

	required := []string{"name", "email", "phone", "address", "city", "post_code", "started_time", "schedule_at"}
	fields := map[string]string{}
	for _, field := range required {
		value := r.FormValue(field)
		if value == "" {
			s.writeError(w, r, pkgerrors.New(pkgerrors.CodeValidation, field+" is required"))
			return
		}
		fields[field] = value
	}

	ids, err := collectProductIDs(r.MultipartForm.Value)
	if err != nil {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product ids"))
		return
	}
	if len(ids) == 0 {
		s.writeError(w, r, pkgerrors.New(pkgerrors.CodeValidation, "at least one product id is required"))
		return
	}

	products, err := s.productsByID(ids)
	if err != nil {
		s.writeError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown product"))
		return
	}

	subtotal := 0
	lines := make([]catalog.TransactionLine, 0, len(products))
	for i, product := range products {
		subtotal += product.Price
		p := product
		lines = append(lines, catalog.TransactionLine{
			ID:        i + 1,
			Price:     product.Price,
			ProductID: product.ID,
			Product:   &p,
		})
	}
	tax := decimal.NewFromInt(int64(subtotal)).Mul(decimal.NewFromFloat(0.11))

	receipt := s.recordOrder(catalog.OrderDetails{
		Name:           fields["name"],
		Phone:          fields["phone"],
		Email:          fields["email"],
		Address:        fields["address"],
		PostCode:       fields["post_code"],
		City:           fields["city"],
		IsPaid:         false,
		SubTotal:       subtotal,
		TotalTaxAmount: int(tax.Round(0).IntPart()),
		TotalAmount:    int(decimal.NewFromInt(int64(subtotal)).Add(tax).Round(0).IntPart()),
		StartedTime:    fields["started_time"],
		ScheduleAt:     fields["schedule_at"],
		Proof:          header.Filename,
		Transactions:   lines,
	})

	s.writeSuccess(w, http.StatusCreated, receipt)
}

func collectProductIDs(form map[string][]string) ([]int, error) {
	indexed := map[int]int{}
	maxIndex := -1
	for field, values := range form {
		match := productIDField.FindStringSubmatch(field)
		if match == nil || len(values) == 0 {
			continue
		}
		index, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, err
		}
		id, err := strconv.Atoi(values[0])
		if err != nil {
			return nil, fmt.Errorf("product_ids[%d]: %w", index, err)
		}
		indexed[index] = id
		if index > maxIndex {
			maxIndex = index
		}
	}
	out := make([]int, 0, len(indexed))
	for i := 0; i <= maxIndex; i++ {
		id, ok := indexed[i]
		if !ok {
			return nil, fmt.Errorf("product_ids[%d] missing", i)
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	if s.logg != nil && meta.HTTPStatus >= 500 {
		s.logg.Error(r.Context(), "stub handler failed", err)
	}

	payload := types.ErrorEnvelope{Error: types.APIError{
		Code:    string(typed.Code()),
		Message: typed.Message(),
	}}
	if meta.DetailsAllowed {
		payload.Error.Details = typed.Details()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	json.NewEncoder(w).Encode(payload)
}
