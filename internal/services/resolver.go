package services

import (
	"context"
	"fmt"
	"strings"

	"dealportal/backend-go/internal/models"
)

// CRM is the subset of the CRM API the resolver needs.
type CRM interface {
	FindContactByEmail(ctx context.Context, email string) (models.Contact, bool, error)
	ListDealIDsForContact(ctx context.Context, contactID string) ([]string, error)
	FetchDeals(ctx context.Context, dealIDs []string) ([]models.Deal, error)
	FetchDeal(ctx context.Context, dealID string) (models.Deal, bool, error)
}

// Lookup is what a caller supplies on the query string.
type Lookup struct {
	Email  string
	DealID string
	Origin string
}

type OutcomeKind int

const (
	OutcomeMissingEmail OutcomeKind = iota + 1
	OutcomeNoAccount
	OutcomeNoPrograms
	OutcomeDealNotFound
	OutcomeSinglePortal
	OutcomeSelectionNeeded
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMissingEmail:
		return "missing_email"
	case OutcomeNoAccount:
		return "no_account"
	case OutcomeNoPrograms:
		return "no_programs"
	case OutcomeDealNotFound:
		return "deal_not_found"
	case OutcomeSinglePortal:
		return "single_portal"
	case OutcomeSelectionNeeded:
		return "selection_needed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome carries everything the presenter needs for one request. Email and
// Origin are the values to echo into links; Deals holds one deal for
// OutcomeSinglePortal and all of them for OutcomeSelectionNeeded.
type Outcome struct {
	Kind    OutcomeKind
	Email   string
	Origin  string
	Contact *models.Contact
	Deals   []models.Deal
}

// Deal returns the deal of a single-portal outcome.
func (o Outcome) Deal() (models.Deal, bool) {
	if o.Kind != OutcomeSinglePortal || len(o.Deals) != 1 {
		return models.Deal{}, false
	}
	return o.Deals[0], true
}

type Resolver struct {
	crm CRM
}

func NewResolver(crm CRM) *Resolver {
	return &Resolver{crm: crm}
}

// Resolve picks the rendering outcome for a lookup. A deal id short-circuits
// contact resolution and is trusted as given: the caller's email is stamped
// on the deal without checking it owns the deal.
func (r *Resolver) Resolve(ctx context.Context, in Lookup) (Outcome, error) {
	email := strings.TrimSpace(in.Email)
	dealID := strings.TrimSpace(in.DealID)
	out := Outcome{Email: email, Origin: in.Origin}

	if dealID != "" {
		deal, found, err := r.crm.FetchDeal(ctx, dealID)
		if err != nil {
			return out, fmt.Errorf("resolve deal %s: %w", dealID, err)
		}
		if !found {
			out.Kind = OutcomeDealNotFound
			return out, nil
		}
		out.Kind = OutcomeSinglePortal
		out.Deals = []models.Deal{deal.WithContext(email, in.Origin)}
		return out, nil
	}

	if email == "" {
		out.Kind = OutcomeMissingEmail
		return out, nil
	}

	contact, found, err := r.crm.FindContactByEmail(ctx, email)
	if err != nil {
		return out, fmt.Errorf("resolve contact: %w", err)
	}
	if !found {
		out.Kind = OutcomeNoAccount
		return out, nil
	}
	out.Contact = &contact
	if contact.Email != "" {
		out.Email = contact.Email
	}

	ids, err := r.crm.ListDealIDsForContact(ctx, contact.ID)
	if err != nil {
		return out, fmt.Errorf("resolve deals for contact %s: %w", contact.ID, err)
	}
	if len(ids) == 0 {
		out.Kind = OutcomeNoPrograms
		return out, nil
	}

	deals, err := r.crm.FetchDeals(ctx, ids)
	if err != nil {
		return out, fmt.Errorf("resolve deals for contact %s: %w", contact.ID, err)
	}
	stamped := make([]models.Deal, 0, len(deals))
	for _, d := range deals {
		stamped = append(stamped, d.WithContext(out.Email, in.Origin))
	}
	out.Deals = stamped

	switch len(stamped) {
	case 0:
		out.Kind = OutcomeNoPrograms
	case 1:
		out.Kind = OutcomeSinglePortal
	default:
		out.Kind = OutcomeSelectionNeeded
	}
	return out, nil
}
