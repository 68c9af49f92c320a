// Package keys builds the cache keys of every read endpoint. Each endpoint
// has its own builder and a unique root segment, and every request
// parameter is part of the key, so two different requests never share an
// entry.
package keys

import (
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
)

// Root is the first segment of a key; it names the resource family and is
// the usual invalidation prefix.
type Root string

const (
	RootCompanies            Root = "companies"
	RootStations             Root = "stations"
	RootArticles             Root = "articles"
	RootWarehouseArticles    Root = "warehouse-articles"
	RootBatches              Root = "batches"
	RootFlights              Root = "flights"
	RootCash                 Root = "cash"
	RootCredits              Root = "credits"
	RootSafetyReports        Root = "safety-reports"
	RootEmployees            Root = "employees"
	RootEmployeeCertificates Root = "employee-certificates"
	RootCertificates         Root = "certificates"
	RootWorkSchedules        Root = "work-schedules"
)

// Roots lists every root, in a stable order.
func Roots() []Root {
	return []Root{
		RootCompanies, RootStations, RootArticles, RootWarehouseArticles,
		RootBatches, RootFlights, RootCash, RootCredits, RootSafetyReports,
		RootEmployees, RootEmployeeCertificates, RootCertificates, RootWorkSchedules,
	}
}

// Key is the prefix covering the whole resource family.
func (r Root) Key() querycache.Key {
	return querycache.NewKey(string(r))
}

// Company is the prefix covering the family within one tenant.
func (r Root) Company(slug string) querycache.Key {
	return querycache.NewKey(string(r), slug)
}

type ArticleStatus string

const (
	ArticleStatusAll      ArticleStatus = "all"
	ArticleStatusActive   ArticleStatus = "active"
	ArticleStatusArchived ArticleStatus = "archived"
)

// FlightFilter narrows the flight list. Zero fields are unrestricted.
type FlightFilter struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	ClientID string `json:"clientId,omitempty"`
}

const (
	listSegment   = "list"
	detailSegment = "detail"
)

func Companies() querycache.Key {
	return RootCompanies.Key()
}

func Stations(company string) querycache.Key {
	return querycache.NewKey(string(RootStations), company)
}

func Articles(company string, status ArticleStatus) querycache.Key {
	if status == "" {
		status = ArticleStatusAll
	}
	return querycache.NewKey(string(RootArticles), company, string(status))
}

func WarehouseArticles(company, station string) querycache.Key {
	return querycache.NewKey(string(RootWarehouseArticles), company, station)
}

func Batches(company, station string) querycache.Key {
	return querycache.NewKey(string(RootBatches), company, station)
}

func Flights(company string, f FlightFilter) querycache.Key {
	return querycache.NewKey(string(RootFlights), company, listSegment, f)
}

func Flight(company, id string) querycache.Key {
	return querycache.NewKey(string(RootFlights), company, detailSegment, id)
}

func Cash(company, clientID string) querycache.Key {
	return querycache.NewKey(string(RootCash), company, clientID)
}

func Credits(company string) querycache.Key {
	return querycache.NewKey(string(RootCredits), company)
}

func SafetyReports(company string) querycache.Key {
	return querycache.NewKey(string(RootSafetyReports), company, listSegment)
}

func SafetyReport(company, id string) querycache.Key {
	return querycache.NewKey(string(RootSafetyReports), company, detailSegment, id)
}

func Employees(company string) querycache.Key {
	return querycache.NewKey(string(RootEmployees), company)
}

func EmployeeCertificates(company, employeeID string) querycache.Key {
	return querycache.NewKey(string(RootEmployeeCertificates), company, employeeID)
}

func Certificates(company string) querycache.Key {
	return querycache.NewKey(string(RootCertificates), company)
}

func WorkSchedules(company, employeeID string) querycache.Key {
	return querycache.NewKey(string(RootWorkSchedules), company, employeeID)
}
