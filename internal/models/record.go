package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidRecord is returned when a record variant fails validation.
var ErrInvalidRecord = errors.New("invalid record")

// Record is a domain-specific record built from a recurring pattern.
// Exactly one variant exists per Domain.
type Record interface {
	RecordDomain() Domain
	Base() RecordBase
}

// RecordBase carries the fields shared by every record variant.
type RecordBase struct {
	Type      RecordType `json:"type"`
	Provider  string     `json:"provider"`
	Amount    float64    `json:"amount"` // absolute typical payment
	Frequency Frequency  `json:"frequency"`
	NextDue   *time.Time `json:"nextDue,omitempty"`
}

func (b RecordBase) validate(d Domain) error {
	if !d.Allows(b.Type) {
		return fmt.Errorf("%w: record type %q not allowed for domain %q", ErrInvalidRecord, b.Type, d)
	}
	if strings.TrimSpace(b.Provider) == "" {
		return fmt.Errorf("%w: provider is required", ErrInvalidRecord)
	}
	if math.IsNaN(b.Amount) || math.IsInf(b.Amount, 0) || b.Amount < 0 {
		return fmt.Errorf("%w: amount must be a non-negative number, got %v", ErrInvalidRecord, b.Amount)
	}
	return nil
}

// PropertyRecord covers household bills and housing costs.
type PropertyRecord struct {
	RecordBase
	UtilityKind string `json:"utilityKind,omitempty"` // gas, electricity, water, energy
}

func NewPropertyRecord(base RecordBase, utilityKind string) (PropertyRecord, error) {
	if err := base.validate(DomainProperty); err != nil {
		return PropertyRecord{}, err
	}
	if utilityKind != "" && base.Type != RecordUtilityBill {
		return PropertyRecord{}, fmt.Errorf("%w: utility kind only applies to utility bills", ErrInvalidRecord)
	}
	return PropertyRecord{RecordBase: base, UtilityKind: utilityKind}, nil
}

func (r PropertyRecord) RecordDomain() Domain { return DomainProperty }
func (r PropertyRecord) Base() RecordBase     { return r.RecordBase }

// VehicleRecord covers vehicle finance and running costs.
type VehicleRecord struct {
	RecordBase
	Lender string `json:"lender,omitempty"`
}

func NewVehicleRecord(base RecordBase, lender string) (VehicleRecord, error) {
	if err := base.validate(DomainVehicles); err != nil {
		return VehicleRecord{}, err
	}
	if lender != "" && base.Type != RecordVehicleFinance {
		return VehicleRecord{}, fmt.Errorf("%w: lender only applies to vehicle finance", ErrInvalidRecord)
	}
	return VehicleRecord{RecordBase: base, Lender: lender}, nil
}

func (r VehicleRecord) RecordDomain() Domain { return DomainVehicles }
func (r VehicleRecord) Base() RecordBase     { return r.RecordBase }

// FinanceRecord covers banking products, loans and generic subscriptions.
type FinanceRecord struct {
	RecordBase
	Institution string `json:"institution"`
	Incoming    bool   `json:"incoming"`
}

func NewFinanceRecord(base RecordBase, institution string, incoming bool) (FinanceRecord, error) {
	if err := base.validate(DomainFinance); err != nil {
		return FinanceRecord{}, err
	}
	if institution == "" {
		institution = base.Provider
	}
	return FinanceRecord{RecordBase: base, Institution: institution, Incoming: incoming}, nil
}

func (r FinanceRecord) RecordDomain() Domain { return DomainFinance }
func (r FinanceRecord) Base() RecordBase     { return r.RecordBase }

// InsuranceRecord covers insurance policies.
type InsuranceRecord struct {
	RecordBase
	Insurer       string  `json:"insurer"`
	AnnualPremium float64 `json:"annualPremium"`
}

func NewInsuranceRecord(base RecordBase, insurer string, annualPremium float64) (InsuranceRecord, error) {
	if err := base.validate(DomainInsurance); err != nil {
		return InsuranceRecord{}, err
	}
	if annualPremium < 0 {
		return InsuranceRecord{}, fmt.Errorf("%w: annual premium must not be negative", ErrInvalidRecord)
	}
	if insurer == "" {
		insurer = base.Provider
	}
	return InsuranceRecord{RecordBase: base, Insurer: insurer, AnnualPremium: annualPremium}, nil
}

func (r InsuranceRecord) RecordDomain() Domain { return DomainInsurance }
func (r InsuranceRecord) Base() RecordBase     { return r.RecordBase }

// GovernmentRecord covers taxes, licences and benefits.
type GovernmentRecord struct {
	RecordBase
	Authority string `json:"authority"`
}

func NewGovernmentRecord(base RecordBase, authority string) (GovernmentRecord, error) {
	if err := base.validate(DomainGovernment); err != nil {
		return GovernmentRecord{}, err
	}
	if authority == "" {
		authority = base.Provider
	}
	return GovernmentRecord{RecordBase: base, Authority: authority}, nil
}

func (r GovernmentRecord) RecordDomain() Domain { return DomainGovernment }
func (r GovernmentRecord) Base() RecordBase     { return r.RecordBase }

// ServiceRecord covers telecoms, streaming and memberships.
type ServiceRecord struct {
	RecordBase
	ServiceName string `json:"serviceName"`
}

func NewServiceRecord(base RecordBase, serviceName string) (ServiceRecord, error) {
	if err := base.validate(DomainServices); err != nil {
		return ServiceRecord{}, err
	}
	if serviceName == "" {
		serviceName = base.Provider
	}
	return ServiceRecord{RecordBase: base, ServiceName: serviceName}, nil
}

func (r ServiceRecord) RecordDomain() Domain { return DomainServices }
func (r ServiceRecord) Base() RecordBase     { return r.RecordBase }

// EmploymentRecord covers income from employers and pensions.
type EmploymentRecord struct {
	RecordBase
	Employer string `json:"employer"`
}

func NewEmploymentRecord(base RecordBase, employer string) (EmploymentRecord, error) {
	if err := base.validate(DomainEmployment); err != nil {
		return EmploymentRecord{}, err
	}
	if employer == "" {
		employer = base.Provider
	}
	return EmploymentRecord{RecordBase: base, Employer: employer}, nil
}

func (r EmploymentRecord) RecordDomain() Domain { return DomainEmployment }
func (r EmploymentRecord) Base() RecordBase     { return r.RecordBase }

// LegalRecord covers solicitors and legal services.
type LegalRecord struct {
	RecordBase
	Firm string `json:"firm"`
}

func NewLegalRecord(base RecordBase, firm string) (LegalRecord, error) {
	if err := base.validate(DomainLegal); err != nil {
		return LegalRecord{}, err
	}
	if firm == "" {
		firm = base.Provider
	}
	return LegalRecord{RecordBase: base, Firm: firm}, nil
}

func (r LegalRecord) RecordDomain() Domain { return DomainLegal }
func (r LegalRecord) Base() RecordBase     { return r.RecordBase }
