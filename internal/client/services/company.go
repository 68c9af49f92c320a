package services

import (
	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/keys"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/query"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
)

// CompanyService lists tenants and their stations.
type CompanyService interface {
	Companies() *query.Query[struct{}, []models.Company]
	Stations(company string) *query.Query[string, []models.Station]
}

type companyService struct {
	d Deps
}

func NewCompanyService(d Deps) CompanyService {
	return &companyService{d: d}
}

// Companies is GET /companies.
func (s *companyService) Companies() *query.Query[struct{}, []models.Company] {
	return newQuery[struct{}, []models.Company](s.d,
		func(struct{}) querycache.Key { return keys.Companies() },
		func(struct{}) string { return "/companies" },
		nil,
		struct{}{},
	)
}

// Stations is GET /{company}/stations.
func (s *companyService) Stations(company string) *query.Query[string, []models.Station] {
	return newQuery[string, []models.Station](s.d,
		keys.Stations,
		func(c string) string { return client.Path(c, "stations") },
		companyOnly,
		company,
	)
}
