package services

import (
	"github.com/SJJP-F-2025/requests-service/internal/models"
)

// The authorization gate is a set of pure filters applied at every listing
// and mutation boundary. Admins pass everything through; coaches are scoped
// to the schools whose coaches list carries their PS number, and to the
// requests and stock rows belonging to those schools. The gate is entirely
// service-side and trusts the session identity; there is no row-level
// enforcement at the remote store.

// VisibleSchools returns the schools id may see and act on.
func VisibleSchools(id models.Identity, schools []models.School) []models.School {
	if id.IsAdmin() {
		return schools
	}
	visible := make([]models.School, 0)
	for _, s := range schools {
		if s.HasCoach(id.PSNumber) {
			visible = append(visible, s)
		}
	}
	return visible
}

// VisibleSchoolIDs is the set form of VisibleSchools, used to scope requests
// and stock rows.
func VisibleSchoolIDs(id models.Identity, schools []models.School) map[string]bool {
	ids := make(map[string]bool)
	for _, s := range VisibleSchools(id, schools) {
		ids[s.ID] = true
	}
	return ids
}

// FilterRequests keeps the requests whose school is visible to id.
func FilterRequests(id models.Identity, requests []models.Request, schoolIDs map[string]bool) []models.Request {
	if id.IsAdmin() {
		return requests
	}
	visible := make([]models.Request, 0)
	for _, r := range requests {
		if schoolIDs[r.SchoolID] {
			visible = append(visible, r)
		}
	}
	return visible
}

// FilterStock keeps the stock rows whose school is visible to id.
func FilterStock(id models.Identity, rows []models.StockRow, schoolIDs map[string]bool) []models.StockRow {
	if id.IsAdmin() {
		return rows
	}
	visible := make([]models.StockRow, 0)
	for _, r := range rows {
		if schoolIDs[r.SchoolID] {
			visible = append(visible, r)
		}
	}
	return visible
}
