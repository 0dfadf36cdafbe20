package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ginzapet/storefront/pkg/config"
	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
	"github.com/ginzapet/storefront/pkg/logger"
)

// Client talks to the remote catalog API. All responses arrive in a
// `{ data: ... }` envelope.
type Client struct {
	baseURL string
	http    *http.Client
	logg    *logger.Logger
}

// NewClient builds a catalog client against the configured base URL.
func NewClient(cfg config.CatalogConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
	}, nil
}

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.getJSON(ctx, "/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryBySlug returns one category with its product lists populated.
func (c *Client) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var out Category
	if err := c.getJSON(ctx, "/category/"+url.PathEscape(slug), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Products lists products, optionally limited and filtered to popular ones.
func (c *Client) Products(ctx context.Context, query ProductQuery) ([]Product, error) {
	values := url.Values{}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.PopularOnly {
		values.Set("is_popular", "1")
	}
	path := "/products"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out []Product
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductBySlug resolves a single product. A missing product is reported as
// (nil, nil) when the server answers with an empty envelope, and as a
// not-found error when it answers 404. Callers that only care about
// resolvability treat both the same way.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var out *Product
	if err := c.getJSON(ctx, "/product/"+url.PathEscape(slug), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckBooking looks up a submitted order by transaction id and email.
func (c *Client) CheckBooking(ctx context.Context, email, trxID string) (*OrderDetails, error) {
	payload, err := json.Marshal(map[string]string{
		"email":          email,
		"booking_trx_id": trxID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode booking lookup")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check-booking", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build booking lookup request")
	}
	req.Header.Set("Content-Type", "application/json")

	var out OrderDetails
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrderSubmission is the multipart payload sent to the order-transaction
// endpoint. ProofName and Proof carry the payment proof image.
type OrderSubmission struct {
	ProofName   string
	Proof       io.Reader
	Name        string
	Email       string
	Phone       string
	Address     string
	City        string
	PostCode    string
	StartedTime string
	ScheduleAt  string
	ProductIDs  []int
}

// SubmitOrder posts the assembled order transaction. A non-2xx response or
// transport failure leaves the caller's local state untouched.
func (c *Client) SubmitOrder(ctx context.Context, submission OrderSubmission) (*OrderReceipt, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("proof", submission.ProofName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach proof")
	}
	if _, err := io.Copy(part, submission.Proof); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read proof")
	}

	fields := map[string]string{
		"name":         submission.Name,
		"email":        submission.Email,
		"phone":        submission.Phone,
		"address":      submission.Address,
		"city":         submission.City,
		"post_code":    submission.PostCode,
		"started_time": submission.StartedTime,
		"schedule_at":  submission.ScheduleAt,
	}
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write form field")
		}
	}
	for i, id := range submission.ProductIDs {
		field := fmt.Sprintf("product_ids[%d]", i)
		if err := writer.WriteField(field, strconv.Itoa(id)); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write product id")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order-transaction", &body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out OrderReceipt
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog request failed")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "catalog resource not found")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(req.Context(), "status", resp.StatusCode), "catalog returned non-success status")
		}
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog returned status %d", resp.StatusCode))
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog envelope")
	}
	if dest == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog payload")
	}
	return nil
}
