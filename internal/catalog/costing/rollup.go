// Package costing holds the kit cost-rollup policy, shared by the catalog
// services (display) and the BOM expansion engine (explosion).
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/navisol/navisol-erp/internal/catalog/entity"
)

// Result is the outcome of a kit cost rollup. A component without a cost
// price contributes zero and its article code lands in MissingCosts; a
// component whose pinned version could not be loaded lands there under its
// version id. The total is partial, not invalid — callers surface the
// distinction between "costs zero" and "cost unknown".
type Result struct {
	Cost         decimal.Decimal `json:"cost"`
	MissingCosts []string        `json:"missing_costs"`
}

// Rollup derives the cost of a kit version. The version must arrive with its
// components and their pinned article versions (and article headers) loaded.
func Rollup(v *entity.KitVersion) Result {
	res := Result{Cost: decimal.Zero, MissingCosts: []string{}}

	if v.Kit != nil && v.Kit.CostRollupMode == entity.RollupManual {
		if v.ManualCostPrice.Valid {
			res.Cost = v.ManualCostPrice.Decimal
		}
		return res
	}

	for _, comp := range v.Components {
		av := comp.ArticleVersion
		if av == nil {
			res.MissingCosts = append(res.MissingCosts, comp.ArticleVersionID)
			continue
		}
		if av.CostPrice.Valid {
			res.Cost = res.Cost.Add(av.CostPrice.Decimal.Mul(comp.Qty))
			continue
		}
		code := ""
		if av.Article != nil {
			code = av.Article.Code
		}
		res.MissingCosts = append(res.MissingCosts, code)
	}
	return res
}
