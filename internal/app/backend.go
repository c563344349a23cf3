package app

import (
	"context"

	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/service"
)

// opportunityBackend joins the companies and opportunities services into
// what the opportunity form needs.
type opportunityBackend struct {
	companies     *service.Companies
	opportunities *service.Opportunities
}

func (b opportunityBackend) Companies(ctx context.Context) ([]model.Company, error) {
	return b.companies.List(ctx)
}

func (b opportunityBackend) Statuses(ctx context.Context) ([]model.OpportunityStatus, error) {
	return b.opportunities.Statuses(ctx)
}

func (b opportunityBackend) Create(ctx context.Context, in model.OpportunityInput) (*model.Opportunity, error) {
	return b.opportunities.Create(ctx, in)
}
