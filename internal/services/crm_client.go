package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"dealportal/backend-go/internal/config"
	"dealportal/backend-go/internal/models"
)

const batchReadLimit = 100

// CRMClient talks to the CRM's v3 object API with a bearer token.
type CRMClient struct {
	baseURL string
	token   string
	hc      *http.Client
	props   config.DealProperties
}

type UpstreamError struct {
	Op     string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("crm %s: %d", e.Op, e.Status)
}

// ConfigurationError reports a setting the portal cannot run without.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Setting)
}

func NewCRMClient(cfg config.Config) *CRMClient {
	base := &http.Client{Timeout: cfg.RequestTimeout}
	hc := base
	if cfg.CRMAccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.CRMAccessToken}))
		hc.Timeout = cfg.RequestTimeout
	}
	props := cfg.Properties
	if props.Name == "" {
		props = config.DefaultDealProperties()
	}
	return &CRMClient{
		baseURL: strings.TrimRight(cfg.CRMBaseURL, "/"),
		token:   cfg.CRMAccessToken,
		hc:      hc,
		props:   props,
	}
}

func (c *CRMClient) Configured() bool {
	return c.token != ""
}

type crmProperties map[string]json.RawMessage

// get returns a property as text. The CRM sends strings, but numbers and
// nulls are tolerated.
func (p crmProperties) get(name string) string {
	raw, ok := p[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

type crmObject struct {
	ID         string        `json:"id"`
	Properties crmProperties `json:"properties"`
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchFilterGroup struct {
	Filters []searchFilter `json:"filters"`
}

type searchRequest struct {
	FilterGroups []searchFilterGroup `json:"filterGroups"`
	Properties   []string            `json:"properties"`
	Limit        int                 `json:"limit"`
}

type searchResponse struct {
	Total   int         `json:"total"`
	Results []crmObject `json:"results"`
}

type associationsResponse struct {
	Results []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"results"`
	Paging *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

type batchReadRequest struct {
	Properties []string         `json:"properties"`
	Inputs     []batchReadInput `json:"inputs"`
}

type batchReadInput struct {
	ID string `json:"id"`
}

type batchReadResponse struct {
	Status  string      `json:"status"`
	Results []crmObject `json:"results"`
}

// FindContactByEmail runs an exact-match search on the email property.
// A missing contact is reported as found=false, not as an error.
func (c *CRMClient) FindContactByEmail(ctx context.Context, email string) (models.Contact, bool, error) {
	var out models.Contact
	if err := c.checkConfig(); err != nil {
		return out, false, err
	}
	req := searchRequest{
		FilterGroups: []searchFilterGroup{{
			Filters: []searchFilter{{PropertyName: "email", Operator: "EQ", Value: email}},
		}},
		Properties: []string{"email", "firstname", "lastname"},
		Limit:      1,
	}

	var resp searchResponse
	if _, err := c.do(ctx, "contact search", http.MethodPost, "/crm/v3/objects/contacts/search", req, &resp, false); err != nil {
		return out, false, err
	}
	if len(resp.Results) == 0 {
		return out, false, nil
	}
	obj := resp.Results[0]
	out = models.Contact{
		ID:        obj.ID,
		Email:     obj.Properties.get("email"),
		FirstName: obj.Properties.get("firstname"),
		LastName:  obj.Properties.get("lastname"),
	}
	if out.Email == "" {
		out.Email = email
	}
	return out, true, nil
}

// ListDealIDsForContact follows the association cursor until exhausted.
// Duplicate ids (one deal under several association types) are collapsed.
func (c *CRMClient) ListDealIDsForContact(ctx context.Context, contactID string) ([]string, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	ids := []string{}
	seen := map[string]bool{}
	after := ""
	for {
		path := "/crm/v3/objects/contacts/" + url.PathEscape(contactID) + "/associations/deals"
		if after != "" {
			path += "?after=" + url.QueryEscape(after)
		}
		var resp associationsResponse
		found, err := c.do(ctx, "association list", http.MethodGet, path, nil, &resp, true)
		if err != nil {
			return nil, err
		}
		if !found {
			return ids, nil
		}
		for _, r := range resp.Results {
			if r.ID == "" || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
		if resp.Paging == nil || resp.Paging.Next == nil || resp.Paging.Next.After == "" {
			return ids, nil
		}
		after = resp.Paging.Next.After
	}
}

// FetchDeals batch-reads deals, preserving the order the CRM returns them.
func (c *CRMClient) FetchDeals(ctx context.Context, dealIDs []string) ([]models.Deal, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	deals := make([]models.Deal, 0, len(dealIDs))
	for start := 0; start < len(dealIDs); start += batchReadLimit {
		end := start + batchReadLimit
		if end > len(dealIDs) {
			end = len(dealIDs)
		}
		req := batchReadRequest{Properties: c.dealProperties()}
		for _, id := range dealIDs[start:end] {
			req.Inputs = append(req.Inputs, batchReadInput{ID: id})
		}
		var resp batchReadResponse
		if _, err := c.do(ctx, "deal batch read", http.MethodPost, "/crm/v3/objects/deals/batch/read", req, &resp, false); err != nil {
			return nil, err
		}
		for _, obj := range resp.Results {
			deals = append(deals, c.toDeal(obj))
		}
	}
	return deals, nil
}

func (c *CRMClient) FetchDeal(ctx context.Context, dealID string) (models.Deal, bool, error) {
	if err := c.checkConfig(); err != nil {
		return models.Deal{}, false, err
	}
	q := url.Values{}
	q.Set("properties", strings.Join(c.dealProperties(), ","))
	path := "/crm/v3/objects/deals/" + url.PathEscape(dealID) + "?" + q.Encode()

	var obj crmObject
	found, err := c.do(ctx, "deal read", http.MethodGet, path, nil, &obj, true)
	if err != nil || !found {
		return models.Deal{}, false, err
	}
	return c.toDeal(obj), true, nil
}

func (c *CRMClient) dealProperties() []string {
	out := []string{c.props.Name, c.props.Fee, c.props.TotalPaid}
	return append(out, c.props.Payments...)
}

func (c *CRMClient) toDeal(obj crmObject) models.Deal {
	d := models.Deal{
		ID:                obj.ID,
		Name:              obj.Properties.get(c.props.Name),
		ProgramFee:        obj.Properties.get(c.props.Fee),
		TotalPaidOverride: obj.Properties.get(c.props.TotalPaid),
	}
	for i, name := range c.props.Payments {
		if i >= len(d.PaymentFields) {
			break
		}
		d.PaymentFields[i] = obj.Properties.get(name)
	}
	return d
}

func (c *CRMClient) checkConfig() error {
	if c.token == "" {
		return &ConfigurationError{Setting: "CRM_ACCESS_TOKEN"}
	}
	return nil
}

// do issues one JSON request. When notFoundOK is set a 404 is reported as
// found=false instead of an UpstreamError.
func (c *CRMClient) do(ctx context.Context, op, method, path string, body any, out any, notFoundOK bool) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("crm %s: %w", op, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound && notFoundOK {
		return false, nil
	}
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return false, &UpstreamError{Op: op, Status: res.StatusCode, Body: string(b)}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return false, fmt.Errorf("crm %s: decode: %w", op, err)
	}
	return true, nil
}
