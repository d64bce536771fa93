// Package proforma prices compliant design candidates. Pricing dispatches on
// typology: income-producing typologies are valued off capitalized NOI,
// for-sale typologies off gross sale revenue. All math is deterministic
// arithmetic over the candidate and the configured market assumptions.
package proforma

import (
	"fmt"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/config"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// pricer computes the revenue side for one typology family. Cost buildup is
// shared across all typologies.
type pricer func(c *domain.DesignCandidate, a config.Assumptions, pf *domain.ProForma)

// Model prices candidates against a market assumption set.
type Model struct {
	assumptions config.MarketAssumptions
	pricers     map[domain.Typology]pricer
}

// NewModel builds the typology dispatch table over the given assumptions.
func NewModel(assumptions config.MarketAssumptions) *Model {
	m := &Model{
		assumptions: assumptions,
		pricers:     make(map[domain.Typology]pricer, len(domain.AllTypologies)),
	}
	for _, t := range domain.AllTypologies {
		if t.IsIncomeProducing() {
			m.pricers[t] = priceIncome
		} else {
			m.pricers[t] = priceForSale
		}
	}
	return m
}

// Price produces the pro forma for one candidate. The candidate is assumed
// compliant; the model never checks zoning.
func (m *Model) Price(c *domain.DesignCandidate, typology domain.Typology, site domain.Site) (*domain.ProForma, error) {
	a, ok := m.assumptions.ForTypology(typology)
	if !ok {
		return nil, fmt.Errorf("no market assumptions for typology %s", typology)
	}
	priceRevenue, ok := m.pricers[typology]
	if !ok {
		return nil, fmt.Errorf("no pricer for typology %s", typology)
	}

	pf := &domain.ProForma{
		LandCost: site.Acreage * a.LandCostPerAcre,
	}

	parkingCost := m.assumptions.ParkingCostPerSpace[c.ParkingType] * float64(c.ParkingSpaces)
	pf.HardCosts = c.GrossFloorAreaSqFt*a.HardCostPerSqFt + parkingCost
	pf.SoftCosts = pf.HardCosts * a.SoftCostPct
	pf.Contingency = (pf.HardCosts + pf.SoftCosts) * a.ContingencyPct
	pf.TotalCost = pf.LandCost + pf.HardCosts + pf.SoftCosts + pf.Contingency

	priceRevenue(c, a, pf)

	if pf.TotalCost > 0 {
		pf.MarginPct = pf.Profit / pf.TotalCost * 100
		if pf.NOI > 0 {
			pf.YieldOnCostPct = pf.NOI / pf.TotalCost * 100
		}
	}
	return pf, nil
}

// priceIncome values the asset as capitalized net operating income.
func priceIncome(c *domain.DesignCandidate, a config.Assumptions, pf *domain.ProForma) {
	var gross float64
	if a.RevenuePerUnitPerYear > 0 {
		gross = float64(c.TotalUnits) * a.RevenuePerUnitPerYear
	} else {
		gross = c.GrossFloorAreaSqFt * a.RevenuePerSqFtPerYear
	}

	effective := gross * (1 - a.VacancyPct)
	pf.AnnualRevenue = effective
	pf.NOI = effective * a.OperatingMargin
	pf.CapRate = a.CapRate
	if a.CapRate > 0 {
		pf.EstimatedValue = pf.NOI / a.CapRate
	}
	pf.Profit = pf.EstimatedValue - pf.TotalCost
}

// priceForSale values the project as sellout revenue, no cap rate step.
func priceForSale(c *domain.DesignCandidate, a config.Assumptions, pf *domain.ProForma) {
	pf.TotalRevenue = float64(c.TotalUnits) * a.SalePricePerUnit
	pf.Profit = pf.TotalRevenue - pf.TotalCost
}
