package models

import (
	"strings"

	"github.com/hourledger/backend/internal/identity"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// IdentityAlias maps a legacy or directory spelling of a person to their
// canonical identifier. Match is a glob pattern, aliases apply in ascending
// priority order and the first match wins.
type IdentityAlias struct {
	DefaultModel
	Priority uint              `json:"priority" example:"1"`
	Match    string            `json:"match" example:"jdoe*"`
	PersonID identity.PersonID `json:"personId" example:"jane.doe"`
}

func (a *IdentityAlias) BeforeSave(_ *gorm.DB) error {
	a.Match = strings.TrimSpace(a.Match)

	person, err := identity.Canonicalize(string(a.PersonID))
	if err != nil {
		return err
	}
	a.PersonID = person

	return nil
}

// ResolvePersonID resolves a raw identifier to a canonical person.
//
// The input is canonicalized first. When an alias rule matches either the
// raw input or one of its canonical variants, the alias target wins,
// otherwise the canonical form itself is the identifier.
func ResolvePersonID(raw string) (identity.PersonID, error) {
	person, err := identity.Canonicalize(raw)
	if err != nil {
		return "", err
	}

	var aliases []IdentityAlias
	err = DB.Order("priority ASC").Find(&aliases).Error
	if err != nil {
		return "", err
	}

	candidates := append([]string{strings.ToLower(strings.TrimSpace(raw))}, person.Variants()...)

	for _, alias := range aliases {
		for _, candidate := range candidates {
			if glob.Glob(alias.Match, candidate) {
				return alias.PersonID, nil
			}
		}
	}

	return person, nil
}

// Directory implements identity.Directory on top of the alias table and the
// distribution history.
type Directory struct{}

func (Directory) ResolveCanonicalIdentifier(raw string) (identity.PersonID, error) {
	return ResolvePersonID(raw)
}

// ListDirectReports returns the persons a lead has ever distributed hours
// to. The backend has no directory of its own, distribution history is the
// closest available approximation.
func (Directory) ListDirectReports(person identity.PersonID) ([]identity.PersonID, error) {
	lead, err := identity.Canonicalize(string(person))
	if err != nil {
		return nil, err
	}

	var reports []identity.PersonID
	err = DB.Table("team_distributions").
		Where("lead_id = ? AND deleted_at IS NULL", lead).
		Distinct("reportee_id").
		Order("reportee_id ASC").
		Pluck("reportee_id", &reports).Error
	if err != nil {
		return nil, err
	}

	return reports, nil
}
