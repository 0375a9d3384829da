// Package bom turns a boat configuration into a flat, aggregated bill of
// materials with per-line cost attribution.
package bom

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/navisol/navisol-erp/internal/catalog/costing"
	"github.com/navisol/navisol-erp/internal/catalog/entity"
	"github.com/navisol/navisol-erp/internal/catalog/repository"
)

// Mode records which data the expansion ran against.
type Mode string

const (
	// ModeResolved expands against the live catalog.
	ModeResolved Mode = "resolved"
	// ModeOffline expands without catalog access; every line is priced from
	// the configuration itself, so costs are estimates.
	ModeOffline Mode = "offline"
)

// CostSource records where a line's unit cost came from.
type CostSource string

const (
	// CostCatalog means an authoritative cost price from the catalog.
	CostCatalog CostSource = "catalog"
	// CostLegacy means the unit cost of a legacy part mapping.
	CostLegacy CostSource = "legacy"
	// CostEstimated means the sell-price heuristic; no real cost was known.
	CostEstimated CostSource = "estimated"
)

// estimateFactor approximates a purchase cost from a sell price when no
// authoritative cost exists. Boat-equipment margins cluster around 40%, so
// cost ≈ 60% of the selling price.
var estimateFactor = decimal.RequireFromString("0.6")

// Line is one aggregated BOM row.
type Line struct {
	PartName      string          `json:"part_name"`
	ArticleNumber string          `json:"article_number,omitempty"`
	Category      string          `json:"category,omitempty"`
	Unit          string          `json:"unit"`
	Qty           decimal.Decimal `json:"qty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Mode          Mode            `json:"mode"`
	CostSource    CostSource      `json:"cost_source"`
}

// Engine expands configurations. The resolved path reads the catalog; the
// offline path works from the configuration lines alone.
type Engine struct {
	articles *repository.ArticleRepository
	kits     *repository.KitRepository
	legacy   *repository.LegacyMappingRepository
	logger   *zap.Logger

	// offlineTable lets a caller supply legacy mappings for offline
	// expansion, e.g. a snapshot shipped to a disconnected client.
	offlineTable map[string][]entity.LegacyPartMapping
}

func NewEngine(articles *repository.ArticleRepository, kits *repository.KitRepository, legacy *repository.LegacyMappingRepository, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{articles: articles, kits: kits, legacy: legacy, logger: logger}
}

// SetLegacyTable injects legacy mappings for offline expansion.
func (e *Engine) SetLegacyTable(table map[string][]entity.LegacyPartMapping) {
	e.offlineTable = table
}

// Expand produces the resolved BOM of the given configuration items.
// Excluded items are skipped. The result is deterministic: same items, same
// catalog state, same lines in the same order.
func (e *Engine) Expand(ctx context.Context, items []entity.ConfigurationItem) ([]Line, error) {
	table, err := e.legacy.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("load legacy mappings: %w", err)
	}

	var raw []Line
	for i := range items {
		item := &items[i]
		if !item.IsIncluded {
			continue
		}
		lines, err := e.expandResolved(ctx, item, table)
		if err != nil {
			return nil, err
		}
		raw = append(raw, lines...)
	}
	return aggregate(raw), nil
}

// ExpandOffline expands without touching the catalog. Article and kit lines
// cannot be resolved, so they are priced by the sell-price heuristic from
// the configuration itself; legacy lines use the injected mapping table when
// one is present.
func (e *Engine) ExpandOffline(items []entity.ConfigurationItem) []Line {
	var raw []Line
	for i := range items {
		item := &items[i]
		if !item.IsIncluded {
			continue
		}
		if item.ItemType == entity.ItemTypeLegacy && e.offlineTable != nil {
			if lines, ok := legacyLines(item, e.offlineTable, ModeOffline); ok {
				raw = append(raw, lines...)
				continue
			}
		}
		raw = append(raw, estimatedLine(item, ModeOffline))
	}
	return aggregate(raw)
}

func (e *Engine) expandResolved(ctx context.Context, item *entity.ConfigurationItem, table map[string][]entity.LegacyPartMapping) ([]Line, error) {
	switch item.ItemType {
	case entity.ItemTypeArticle:
		return []Line{e.articleLine(ctx, item)}, nil
	case entity.ItemTypeKit:
		return e.kitLines(ctx, item)
	case entity.ItemTypeLegacy:
		if lines, ok := legacyLines(item, table, ModeResolved); ok {
			return lines, nil
		}
		// No mapping known; keep the line visible rather than dropping it.
		return []Line{estimatedLine(item, ModeResolved)}, nil
	case entity.ItemTypeCustom:
		return []Line{estimatedLine(item, ModeResolved)}, nil
	default:
		return nil, fmt.Errorf("unknown configuration item type %q", item.ItemType)
	}
}

// articleLine prices an article item from its pinned version. A dangling
// reference degrades to the heuristic instead of failing the whole BOM.
func (e *Engine) articleLine(ctx context.Context, item *entity.ConfigurationItem) Line {
	if item.ArticleVersionID == nil {
		e.logger.Warn("article item without version pin", zap.String("item_id", item.ID))
		return estimatedLine(item, ModeResolved)
	}
	av, err := e.articles.FindVersionWithArticle(ctx, *item.ArticleVersionID)
	if err != nil {
		e.logger.Warn("article version unresolvable",
			zap.String("item_id", item.ID),
			zap.String("article_version_id", *item.ArticleVersionID),
			zap.Error(err))
		return estimatedLine(item, ModeResolved)
	}

	line := Line{
		PartName:   item.Name,
		Category:   item.Category,
		Unit:       item.Unit,
		Qty:        item.Quantity,
		Mode:       ModeResolved,
		CostSource: CostEstimated,
	}
	if av.Article != nil {
		line.ArticleNumber = av.Article.Code
		if av.Article.Unit != "" {
			line.Unit = av.Article.Unit
		}
	}
	if av.CostPrice.Valid {
		line.UnitCost = av.CostPrice.Decimal
		line.CostSource = CostCatalog
	} else {
		line.UnitCost = estimate(item.UnitPriceExclVat)
	}
	line.LineTotal = line.Qty.Mul(line.UnitCost)
	return line
}

// kitLines explodes a kit item into its component pins, or emits a single
// opaque set line when the kit version is sales-only or flagged to stay
// unexploded.
func (e *Engine) kitLines(ctx context.Context, item *entity.ConfigurationItem) ([]Line, error) {
	if item.KitVersionID == nil {
		e.logger.Warn("kit item without version pin", zap.String("item_id", item.ID))
		return []Line{estimatedLine(item, ModeResolved)}, nil
	}
	kv, err := e.kits.FindVersionWithComponents(ctx, *item.KitVersionID)
	if err != nil {
		e.logger.Warn("kit version unresolvable",
			zap.String("item_id", item.ID),
			zap.String("kit_version_id", *item.KitVersionID),
			zap.Error(err))
		return []Line{estimatedLine(item, ModeResolved)}, nil
	}

	if !kv.Explodes() {
		return []Line{e.setLine(item, kv)}, nil
	}

	lines := make([]Line, 0, len(kv.Components))
	for _, comp := range kv.Components {
		av := comp.ArticleVersion
		if av == nil {
			e.logger.Warn("kit component pin unresolvable",
				zap.String("kit_version_id", kv.ID),
				zap.String("article_version_id", comp.ArticleVersionID))
			continue
		}
		line := Line{
			PartName:   item.Name,
			Category:   item.Category,
			Unit:       "pcs",
			Qty:        comp.Qty.Mul(item.Quantity),
			Mode:       ModeResolved,
			CostSource: CostEstimated,
		}
		if av.Article != nil {
			line.PartName = av.Article.Name
			line.ArticleNumber = av.Article.Code
			if av.Article.Unit != "" {
				line.Unit = av.Article.Unit
			}
		}
		if av.CostPrice.Valid {
			line.UnitCost = av.CostPrice.Decimal
			line.CostSource = CostCatalog
		} else {
			line.UnitCost = estimate(av.SellPrice)
		}
		line.LineTotal = line.Qty.Mul(line.UnitCost)
		lines = append(lines, line)
	}
	return lines, nil
}

// setLine prices an unexploded kit as one opaque row, unit "set". The cost
// is the kit's rollup when one is known, otherwise the heuristic from the
// quoted price.
func (e *Engine) setLine(item *entity.ConfigurationItem, kv *entity.KitVersion) Line {
	line := Line{
		PartName:   item.Name,
		Category:   item.Category,
		Unit:       "set",
		Qty:        item.Quantity,
		Mode:       ModeResolved,
		CostSource: CostCatalog,
	}
	if kv.Kit != nil {
		line.ArticleNumber = kv.Kit.Code
	}
	res := costing.Rollup(kv)
	line.UnitCost = res.Cost
	if res.Cost.IsZero() && len(res.MissingCosts) > 0 {
		line.UnitCost = estimate(item.UnitPriceExclVat)
		line.CostSource = CostEstimated
	}
	line.LineTotal = line.Qty.Mul(line.UnitCost)
	return line
}

// legacyLines expands a legacy item via the mapping table, matched on the
// lowercased name. Reports false when no mapping exists.
func legacyLines(item *entity.ConfigurationItem, table map[string][]entity.LegacyPartMapping, mode Mode) ([]Line, bool) {
	mappings, ok := table[strings.ToLower(item.Name)]
	if !ok || len(mappings) == 0 {
		return nil, false
	}
	lines := make([]Line, 0, len(mappings))
	for _, m := range mappings {
		qty := m.QtyPer.Mul(item.Quantity)
		lines = append(lines, Line{
			PartName:      m.PartName,
			ArticleNumber: m.ArticleNumber,
			Category:      item.Category,
			Unit:          m.Unit,
			Qty:           qty,
			UnitCost:      m.UnitCost,
			LineTotal:     qty.Mul(m.UnitCost),
			Mode:          mode,
			CostSource:    CostLegacy,
		})
	}
	return lines, true
}

// estimatedLine prices an item purely from its quoted unit price.
func estimatedLine(item *entity.ConfigurationItem, mode Mode) Line {
	unitCost := estimate(item.UnitPriceExclVat)
	return Line{
		PartName:   item.Name,
		Category:   item.Category,
		Unit:       item.Unit,
		Qty:        item.Quantity,
		UnitCost:   unitCost,
		LineTotal:  item.Quantity.Mul(unitCost),
		Mode:       mode,
		CostSource: CostEstimated,
	}
}

func estimate(sellPrice decimal.Decimal) decimal.Decimal {
	return sellPrice.Mul(estimateFactor)
}

// aggregate merges lines that refer to the same part: by article number when
// present, by name otherwise. Un-numbered names are free text arriving with
// inconsistent casing, so the name key is case-folded. Quantities add up, the
// unit cost of the first occurrence wins, and first-seen order is preserved.
func aggregate(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		key := line.ArticleNumber
		if key == "" {
			key = "name:" + strings.ToLower(line.PartName)
		}
		if i, ok := index[key]; ok {
			out[i].Qty = out[i].Qty.Add(line.Qty)
			out[i].LineTotal = out[i].Qty.Mul(out[i].UnitCost)
			continue
		}
		index[key] = len(out)
		out = append(out, line)
	}
	return out
}

// TotalCost sums the line totals of a BOM.
func TotalCost(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}
