package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
)

const MaxNameLength = 255

// AssetStatus is the lifecycle state of an inventory item.
type AssetStatus string

const (
	AssetActive      AssetStatus = "Ativo"
	AssetInactive    AssetStatus = "Inativo"
	AssetMaintenance AssetStatus = "Manutenção"
	AssetRetired     AssetStatus = "Aposentado"
)

func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetActive, AssetInactive, AssetMaintenance, AssetRetired:
		return true
	}
	return false
}

// Asset is an inventory item (ativo).
type Asset struct {
	ID              string
	Name            string
	SerialNumber    string
	Patrimony       string
	Type            string
	Category        string
	Status          AssetStatus
	Location        string
	Responsible     string
	Department      string
	Description     string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	LastMaintenance *time.Time
}

// AssetParams holds the editable fields of an asset.
type AssetParams struct {
	Name            string
	SerialNumber    string
	Patrimony       string
	Type            string
	Category        string
	Status          AssetStatus
	Location        string
	Responsible     string
	Department      string
	Description     string
	LastMaintenance *time.Time
}

func (p AssetParams) validate() error {
	errs := apperrors.NewValidationErrors()

	name := strings.TrimSpace(p.Name)
	if name == "" {
		errs.Add("name", apperrors.ErrNameRequired.Error())
	} else if utf8.RuneCountInString(name) > MaxNameLength {
		errs.Add("name", apperrors.ErrNameTooLong.Error())
	}

	if p.Status != "" && !p.Status.IsValid() {
		errs.Add("status", apperrors.ErrInvalidAssetStatus.Error())
	}

	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		errs.Add("description", apperrors.ErrDescriptionTooLong.Error())
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewAsset validates params and returns an asset created at now.
// A missing status defaults to Ativo.
func NewAsset(params AssetParams, now time.Time) (*Asset, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	a := &Asset{CreatedAt: now}
	a.apply(params)
	return a, nil
}

// Update replaces the editable fields and stamps UpdatedAt.
func (a *Asset) Update(params AssetParams, now time.Time) error {
	if err := params.validate(); err != nil {
		return err
	}

	a.apply(params)
	updated := now
	a.UpdatedAt = &updated
	return nil
}

func (a *Asset) apply(p AssetParams) {
	status := p.Status
	if status == "" {
		status = AssetActive
	}

	a.Name = strings.TrimSpace(p.Name)
	a.SerialNumber = p.SerialNumber
	a.Patrimony = p.Patrimony
	a.Type = p.Type
	a.Category = p.Category
	a.Status = status
	a.Location = p.Location
	a.Responsible = p.Responsible
	a.Department = p.Department
	a.Description = p.Description
	a.LastMaintenance = p.LastMaintenance
}
