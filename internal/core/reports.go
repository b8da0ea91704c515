package core

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ── Safety stock ──────────────────────────────────────────────────────────────

// SafetyStock is either a fixed buffer applied to every product or a
// per-product map keyed by product code or any known source id. The zero
// value is a fixed buffer of zero.
type SafetyStock struct {
	fixed      decimal.Decimal
	perProduct map[string]decimal.Decimal
}

// FixedSafetyStock applies the same buffer quantity to every product.
func FixedSafetyStock(value decimal.Decimal) SafetyStock {
	return SafetyStock{fixed: value}
}

// PerProductSafetyStock looks buffers up by product code first, then by any
// of the product's known source identifiers. Missing entries default to zero.
func PerProductSafetyStock(values map[string]decimal.Decimal) SafetyStock {
	if values == nil {
		values = map[string]decimal.Decimal{}
	}
	return SafetyStock{perProduct: values}
}

// resolve returns the non-negative buffer for one product.
func (s SafetyStock) resolve(productCode string, identifiers []string) decimal.Decimal {
	clamp := func(d decimal.Decimal) decimal.Decimal {
		if d.IsNegative() {
			return decimal.Zero
		}
		return d
	}
	if s.perProduct == nil {
		return clamp(s.fixed)
	}
	for _, key := range append([]string{productCode}, identifiers...) {
		if key == "" {
			continue
		}
		if value, ok := s.perProduct[key]; ok {
			return clamp(value)
		}
	}
	return decimal.Zero
}

// ── Options and report types ──────────────────────────────────────────────────

// ReportOptions are the tuning parameters accepted by report generation.
// Zero-valued fields take the documented defaults. The threshold fields are
// pointers so an explicit 0-day threshold stays distinguishable from unset.
type ReportOptions struct {
	VelocityPeriodDays       int              // 0 = derive from the sales window
	TurnoverPeriodDays       int              // 0 = derive from the sales window
	SafetyStock              SafetyStock      // zero value = fixed 0
	LowStockThresholdDays    *decimal.Decimal // nil = default 7
	ExcessStockThresholdDays *decimal.Decimal // nil = default 60
	TopN                     int              // default 5
	Limit                    int              // default 1000 records per resource
}

func (o ReportOptions) withDefaults() ReportOptions {
	if o.LowStockThresholdDays == nil {
		o.LowStockThresholdDays = decimalPtr(decimal.NewFromInt(7))
	}
	if o.ExcessStockThresholdDays == nil {
		o.ExcessStockThresholdDays = decimalPtr(decimal.NewFromInt(60))
	}
	if o.TopN <= 0 {
		o.TopN = 5
	}
	if o.Limit <= 0 {
		o.Limit = 1000
	}
	return o
}

// ProductReport is the per-product KPI aggregate, including the raw entity
// lists that contributed to it for audit and drill-down. Nil metric pointers
// serialize as JSON null and mean the metric is undefined for this product.
type ProductReport struct {
	ProductID          string   `json:"product_id"`
	ProductCode        string   `json:"product_code"`
	VariantSize        string   `json:"variant_size,omitempty"`
	ProductLabel       string   `json:"product_label"`
	ProductName        string   `json:"product_name,omitempty"`
	CategoryID         string   `json:"category_id,omitempty"`
	CategoryName       string   `json:"category_name,omitempty"`
	ProductInternalIDs []string `json:"product_internal_ids"`

	AverageLeadTimeDays *decimal.Decimal `json:"average_lead_time_days"`
	SalesVelocityPerDay *decimal.Decimal `json:"sales_velocity_per_day"`
	StockCoverageDays   *decimal.Decimal `json:"stock_coverage_days"`
	InventoryTurnover   *decimal.Decimal `json:"inventory_turnover"`
	ReorderPoint        *decimal.Decimal `json:"reorder_point"`

	TotalPurchasedUnits   decimal.Decimal `json:"total_purchased_units"`
	TotalSoldUnits        decimal.Decimal `json:"total_sold_units"`
	CurrentStockUnits     decimal.Decimal `json:"current_stock_units"`
	AverageInventoryUnits decimal.Decimal `json:"average_inventory_units"`

	Purchases   []Purchase   `json:"purchases"`
	Sales       []Sale       `json:"sales"`
	StockLevels []StockLevel `json:"stock_levels"`
}

// ReportSummary holds the fleet-wide aggregates. The overall metrics are
// computed over the unfiltered combined collections, not summed from the
// per-product metrics.
type ReportSummary struct {
	GeneratedAt                time.Time        `json:"generated_at"`
	TotalProducts              int              `json:"total_products"`
	TotalPurchasedUnits        decimal.Decimal  `json:"total_purchased_units"`
	TotalSoldUnits             decimal.Decimal  `json:"total_sold_units"`
	TotalStockUnits            decimal.Decimal  `json:"total_stock_units"`
	AverageLeadTimeDays        *decimal.Decimal `json:"average_lead_time_days"`
	OverallSalesVelocityPerDay *decimal.Decimal `json:"overall_sales_velocity_per_day"`
	OverallStockCoverageDays   *decimal.Decimal `json:"overall_stock_coverage_days"`
	OverallInventoryTurnover   *decimal.Decimal `json:"overall_inventory_turnover"`
}

// ReportEntry is one row in a ranking or alert list: the product identity
// plus whichever metric the list ranks on.
type ReportEntry struct {
	ProductID          string   `json:"product_id"`
	ProductCode        string   `json:"product_code"`
	VariantSize        string   `json:"variant_size,omitempty"`
	ProductLabel       string   `json:"product_label"`
	ProductName        string   `json:"product_name,omitempty"`
	CategoryID         string   `json:"category_id,omitempty"`
	CategoryName       string   `json:"category_name,omitempty"`
	ProductInternalIDs []string `json:"product_internal_ids"`

	TotalSoldUnits      *decimal.Decimal `json:"total_sold_units,omitempty"`
	SalesVelocityPerDay *decimal.Decimal `json:"sales_velocity_per_day,omitempty"`
	CurrentStockUnits   *decimal.Decimal `json:"current_stock_units,omitempty"`
	StockCoverageDays   *decimal.Decimal `json:"stock_coverage_days,omitempty"`
	AverageLeadTimeDays *decimal.Decimal `json:"average_lead_time_days,omitempty"`
	InventoryTurnover   *decimal.Decimal `json:"inventory_turnover,omitempty"`
	ReorderPoint        *decimal.Decimal `json:"reorder_point,omitempty"`
}

// ReportRankings holds the top-N lists, each ranked descending with ties
// broken by stable input order.
type ReportRankings struct {
	TopSellingProducts []ReportEntry `json:"top_selling_products"`
	TopStockLevels     []ReportEntry `json:"top_stock_levels"`
	LongestLeadTimes   []ReportEntry `json:"longest_lead_times"`
	FastestTurnover    []ReportEntry `json:"fastest_turnover"`
}

// ReportAlerts holds the at-risk product lists.
type ReportAlerts struct {
	LowStock           []ReportEntry `json:"low_stock"`
	ReorderRecommended []ReportEntry `json:"reorder_recommended"`
	NoSales            []ReportEntry `json:"no_sales"`
	NoPurchases        []ReportEntry `json:"no_purchases"`
	ExcessStock        []ReportEntry `json:"excess_stock"`
	StagnantStock      []ReportEntry `json:"stagnant_stock"`
}

// ReportMetadata echoes the parameters the report was generated with.
type ReportMetadata struct {
	VelocityPeriodDays       int             `json:"velocity_period_days"`
	TurnoverPeriodDays       int             `json:"turnover_period_days"`
	LowStockThresholdDays    decimal.Decimal `json:"low_stock_threshold_days"`
	ExcessStockThresholdDays decimal.Decimal `json:"excess_stock_threshold_days"`
	TopN                     int             `json:"top_n"`
	Limit                    int             `json:"limit"`
}

// InventoryReport is the full fleet-wide analytical report.
type InventoryReport struct {
	Summary  ReportSummary   `json:"summary"`
	Products []ProductReport `json:"products"`
	Rankings ReportRankings  `json:"rankings"`
	Alerts   ReportAlerts    `json:"alerts"`
	Metadata ReportMetadata  `json:"metadata"`
}

// ── Service ───────────────────────────────────────────────────────────────────

// ReportService builds KPI reports from the record store. Every call
// re-derives its view from the store; nothing is cached across calls.
type ReportService interface {
	// GenerateProductKPIs builds the KPI summary for one product, resolving
	// the requested identifier across entity codes, source ids, and the
	// catalog before falling back to the raw requested string.
	GenerateProductKPIs(ctx context.Context, productID string, opts ReportOptions) (*ProductReport, error)

	// GenerateInventoryReport builds the fleet-wide report with rankings and
	// alert lists, grouping entities by resolved catalog key so variant-coded
	// and internal-id-coded records of the same product merge.
	GenerateInventoryReport(ctx context.Context, opts ReportOptions) (*InventoryReport, error)
}

type reportService struct {
	src    RecordSource
	loader *Loader
}

// NewReportService constructs a ReportService over the given record source.
func NewReportService(src RecordSource) ReportService {
	return &reportService{src: src, loader: NewLoader(src)}
}

// buildProductReport assembles one ProductReport from pre-grouped entities.
// The display copies of the entity lists carry the resolved sku as their
// product id so report consumers see one consistent identifier.
func buildProductReport(
	sku string,
	metadata *CatalogEntry,
	internalIDs []string,
	purchases []Purchase,
	sales []Sale,
	stockLevels []StockLevel,
	opts ReportOptions,
	safetyStock decimal.Decimal,
) (ProductReport, error) {
	lead := AverageLeadTime(purchases)
	velocity := CalculateSalesVelocity(sales, opts.VelocityPeriodDays)
	coverage := CalculateStockCoverage(stockLevels, velocity)
	averageInventory := meanInventory(stockLevels)
	turnover := CalculateInventoryTurnover(sales, averageInventory, opts.TurnoverPeriodDays)

	var leadDays, reorderPoint *decimal.Decimal
	if lead != nil {
		d := leadTimeDays(*lead)
		leadDays = &d
	}
	if lead != nil && velocity != nil {
		point, err := CalculateReorderPoint(*velocity, *leadDays, safetyStock)
		if err != nil {
			return ProductReport{}, err
		}
		reorderPoint = &point
	}

	if sku == "" && metadata != nil {
		sku = metadata.Code
	}
	if sku == "" {
		for _, id := range internalIDs {
			if id != "" {
				sku = id
				break
			}
		}
	}

	code, size := SplitSKUAndSize(sku)

	identifiers := make(map[string]bool, len(internalIDs)+1)
	for _, id := range internalIDs {
		if id != "" {
			identifiers[id] = true
		}
	}
	if metadata != nil && metadata.InternalID != "" {
		identifiers[metadata.InternalID] = true
	}
	if len(identifiers) == 0 && sku != "" {
		identifiers[sku] = true
	}
	sortedIDs := make([]string, 0, len(identifiers))
	for id := range identifiers {
		sortedIDs = append(sortedIDs, id)
	}
	sort.Strings(sortedIDs)

	totalPurchased := decimal.Zero
	purchasesDisplay := make([]Purchase, len(purchases))
	for i, p := range purchases {
		totalPurchased = totalPurchased.Add(p.Quantity)
		p.ProductID = sku
		purchasesDisplay[i] = p
	}
	totalSold := decimal.Zero
	salesDisplay := make([]Sale, len(sales))
	for i, s := range sales {
		totalSold = totalSold.Add(s.Quantity)
		s.ProductID = sku
		salesDisplay[i] = s
	}
	currentStock := decimal.Zero
	stockDisplay := make([]StockLevel, len(stockLevels))
	for i, l := range stockLevels {
		currentStock = currentStock.Add(l.Quantity)
		l.ProductID = sku
		stockDisplay[i] = l
	}

	report := ProductReport{
		ProductID:          sku,
		ProductCode:        code,
		VariantSize:        size,
		ProductLabel:       FormatVariantLabel(sku),
		ProductInternalIDs: sortedIDs,

		AverageLeadTimeDays: leadDays,
		SalesVelocityPerDay: velocity,
		StockCoverageDays:   coverage,
		InventoryTurnover:   turnover,
		ReorderPoint:        reorderPoint,

		TotalPurchasedUnits:   totalPurchased,
		TotalSoldUnits:        totalSold,
		CurrentStockUnits:     currentStock,
		AverageInventoryUnits: averageInventory,

		Purchases:   purchasesDisplay,
		Sales:       salesDisplay,
		StockLevels: stockDisplay,
	}
	if metadata != nil {
		report.ProductName = metadata.Name
		report.CategoryID = metadata.CategoryID
		report.CategoryName = metadata.CategoryName
	}
	return report, nil
}

func (s *reportService) GenerateProductKPIs(ctx context.Context, productID string, opts ReportOptions) (*ProductReport, error) {
	opts = opts.withDefaults()

	catalog, err := LoadProductCatalog(ctx, s.src, opts.Limit)
	if err != nil {
		return nil, err
	}
	purchases, err := s.loader.LoadPurchases(ctx, productID, opts.Limit)
	if err != nil {
		return nil, err
	}
	sales, err := s.loader.LoadSales(ctx, productID, opts.Limit)
	if err != nil {
		return nil, err
	}
	stockLevels, err := s.loader.LoadStockLevels(ctx, productID, opts.Limit)
	if err != nil {
		return nil, err
	}

	sku, metadata := resolveProductKey(catalog, purchases, sales, stockLevels, productID)
	if sku == "" {
		sku = productID
	}

	internalIDs := collectSourceIDs(purchases, sales, stockLevels)
	safety := opts.SafetyStock.resolve(sku, internalIDs)

	report, err := buildProductReport(sku, metadata, internalIDs, purchases, sales, stockLevels, opts, safety)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// resolveProductKey finds the canonical key for a requested product by
// resolving the loaded entities through the catalog, then the raw request
// itself, keeping the request string as a last resort.
func resolveProductKey(
	catalog *ProductCatalog,
	purchases []Purchase,
	sales []Sale,
	stockLevels []StockLevel,
	fallback string,
) (string, *CatalogEntry) {
	for _, p := range purchases {
		if code, entry := catalog.Resolve(p.ProductID, p.SourceProductID); code != "" {
			return code, entry
		}
	}
	for _, s := range sales {
		if code, entry := catalog.Resolve(s.ProductID, s.SourceProductID); code != "" {
			return code, entry
		}
	}
	for _, l := range stockLevels {
		if code, entry := catalog.Resolve(l.ProductID, l.SourceProductID); code != "" {
			return code, entry
		}
	}
	if code, entry := catalog.Resolve(fallback, ""); code != "" {
		return code, entry
	}
	return fallback, nil
}

func collectSourceIDs(purchases []Purchase, sales []Sale, stockLevels []StockLevel) []string {
	set := map[string]bool{}
	for _, p := range purchases {
		if p.SourceProductID != "" {
			set[p.SourceProductID] = true
		}
	}
	for _, s := range sales {
		if s.SourceProductID != "" {
			set[s.SourceProductID] = true
		}
	}
	for _, l := range stockLevels {
		if l.SourceProductID != "" {
			set[l.SourceProductID] = true
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *reportService) GenerateInventoryReport(ctx context.Context, opts ReportOptions) (*InventoryReport, error) {
	opts = opts.withDefaults()

	catalog, err := LoadProductCatalog(ctx, s.src, opts.Limit)
	if err != nil {
		return nil, err
	}
	purchases, err := s.loader.LoadPurchases(ctx, "", opts.Limit)
	if err != nil {
		return nil, err
	}
	sales, err := s.loader.LoadSales(ctx, "", opts.Limit)
	if err != nil {
		return nil, err
	}
	stockLevels, err := s.loader.LoadStockLevels(ctx, "", opts.Limit)
	if err != nil {
		return nil, err
	}

	purchasesByProduct := map[string][]Purchase{}
	salesByProduct := map[string][]Sale{}
	stockByProduct := map[string][]StockLevel{}
	metadataByProduct := map[string]*CatalogEntry{}
	internalIDsByProduct := map[string]map[string]bool{}

	register := func(key string, entry *CatalogEntry, sourceID string) {
		if key == "" {
			return
		}
		if _, known := metadataByProduct[key]; entry != nil || !known {
			metadataByProduct[key] = entry
		}
		if internalIDsByProduct[key] == nil {
			internalIDsByProduct[key] = map[string]bool{}
		}
		if sourceID != "" {
			internalIDsByProduct[key][sourceID] = true
		}
		if entry != nil && entry.InternalID != "" {
			internalIDsByProduct[key][entry.InternalID] = true
		}
	}
	resolveKey := func(code, sourceID string) (string, *CatalogEntry) {
		key, entry := catalog.Resolve(code, sourceID)
		if key == "" {
			key = code
		}
		if key == "" {
			key = sourceID
		}
		return key, entry
	}

	for _, p := range purchases {
		key, entry := resolveKey(p.ProductID, p.SourceProductID)
		if key == "" {
			continue
		}
		purchasesByProduct[key] = append(purchasesByProduct[key], p)
		register(key, entry, p.SourceProductID)
	}
	for _, sl := range sales {
		key, entry := resolveKey(sl.ProductID, sl.SourceProductID)
		if key == "" {
			continue
		}
		salesByProduct[key] = append(salesByProduct[key], sl)
		register(key, entry, sl.SourceProductID)
	}
	for _, level := range stockLevels {
		key, entry := resolveKey(level.ProductID, level.SourceProductID)
		if key == "" {
			continue
		}
		stockByProduct[key] = append(stockByProduct[key], level)
		register(key, entry, level.SourceProductID)
	}

	keys := map[string]bool{}
	for key := range purchasesByProduct {
		keys[key] = true
	}
	for key := range salesByProduct {
		keys[key] = true
	}
	for key := range stockByProduct {
		keys[key] = true
	}
	productKeys := make([]string, 0, len(keys))
	for key := range keys {
		productKeys = append(productKeys, key)
	}
	sort.Strings(productKeys)

	products := make([]ProductReport, 0, len(productKeys))
	for _, key := range productKeys {
		metadata := metadataByProduct[key]
		if metadata == nil {
			_, metadata = catalog.Resolve(key, "")
		}
		idSet := internalIDsByProduct[key]
		internalIDs := make([]string, 0, len(idSet))
		for id := range idSet {
			internalIDs = append(internalIDs, id)
		}
		sort.Strings(internalIDs)

		safety := opts.SafetyStock.resolve(key, internalIDs)
		report, err := buildProductReport(
			key, metadata, internalIDs,
			purchasesByProduct[key], salesByProduct[key], stockByProduct[key],
			opts, safety,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, report)
	}

	summary := ReportSummary{
		GeneratedAt:   time.Now().UTC(),
		TotalProducts: len(products),
	}
	for _, p := range products {
		summary.TotalPurchasedUnits = summary.TotalPurchasedUnits.Add(p.TotalPurchasedUnits)
		summary.TotalSoldUnits = summary.TotalSoldUnits.Add(p.TotalSoldUnits)
		summary.TotalStockUnits = summary.TotalStockUnits.Add(p.CurrentStockUnits)
	}
	if lead := AverageLeadTime(purchases); lead != nil {
		d := leadTimeDays(*lead)
		summary.AverageLeadTimeDays = &d
	}
	summary.OverallSalesVelocityPerDay = CalculateSalesVelocity(sales, opts.VelocityPeriodDays)
	summary.OverallStockCoverageDays = CalculateStockCoverage(stockLevels, summary.OverallSalesVelocityPerDay)
	summary.OverallInventoryTurnover = CalculateInventoryTurnover(sales, meanInventory(stockLevels), opts.TurnoverPeriodDays)

	return &InventoryReport{
		Summary:  summary,
		Products: products,
		Rankings: buildRankings(products, opts.TopN),
		Alerts:   buildAlerts(products, opts),
		Metadata: ReportMetadata{
			VelocityPeriodDays:       opts.VelocityPeriodDays,
			TurnoverPeriodDays:       opts.TurnoverPeriodDays,
			LowStockThresholdDays:    *opts.LowStockThresholdDays,
			ExcessStockThresholdDays: *opts.ExcessStockThresholdDays,
			TopN:                     opts.TopN,
			Limit:                    opts.Limit,
		},
	}, nil
}

// entryFor copies the identity fields of a product report into a list entry.
func entryFor(report ProductReport) ReportEntry {
	return ReportEntry{
		ProductID:          report.ProductID,
		ProductCode:        report.ProductCode,
		VariantSize:        report.VariantSize,
		ProductLabel:       report.ProductLabel,
		ProductName:        report.ProductName,
		CategoryID:         report.CategoryID,
		CategoryName:       report.CategoryName,
		ProductInternalIDs: report.ProductInternalIDs,
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func buildRankings(products []ProductReport, topN int) ReportRankings {
	topBy := func(filter func(ProductReport) bool, less func(a, b ProductReport) bool, fill func(*ReportEntry, ProductReport)) []ReportEntry {
		ranked := make([]ProductReport, 0, len(products))
		for _, p := range products {
			if filter == nil || filter(p) {
				ranked = append(ranked, p)
			}
		}
		sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
		if len(ranked) > topN {
			ranked = ranked[:topN]
		}
		entries := make([]ReportEntry, 0, len(ranked))
		for _, p := range ranked {
			entry := entryFor(p)
			fill(&entry, p)
			entries = append(entries, entry)
		}
		return entries
	}

	return ReportRankings{
		TopSellingProducts: topBy(
			nil,
			func(a, b ProductReport) bool { return a.TotalSoldUnits.GreaterThan(b.TotalSoldUnits) },
			func(e *ReportEntry, p ProductReport) {
				e.TotalSoldUnits = decimalPtr(p.TotalSoldUnits)
				e.SalesVelocityPerDay = p.SalesVelocityPerDay
			},
		),
		TopStockLevels: topBy(
			nil,
			func(a, b ProductReport) bool { return a.CurrentStockUnits.GreaterThan(b.CurrentStockUnits) },
			func(e *ReportEntry, p ProductReport) {
				e.CurrentStockUnits = decimalPtr(p.CurrentStockUnits)
				e.StockCoverageDays = p.StockCoverageDays
			},
		),
		LongestLeadTimes: topBy(
			func(p ProductReport) bool { return p.AverageLeadTimeDays != nil },
			func(a, b ProductReport) bool {
				return a.AverageLeadTimeDays.GreaterThan(*b.AverageLeadTimeDays)
			},
			func(e *ReportEntry, p ProductReport) {
				e.AverageLeadTimeDays = p.AverageLeadTimeDays
			},
		),
		FastestTurnover: topBy(
			func(p ProductReport) bool { return p.InventoryTurnover != nil },
			func(a, b ProductReport) bool {
				return a.InventoryTurnover.GreaterThan(*b.InventoryTurnover)
			},
			func(e *ReportEntry, p ProductReport) {
				e.InventoryTurnover = p.InventoryTurnover
			},
		),
	}
}

func buildAlerts(products []ProductReport, opts ReportOptions) ReportAlerts {
	var alerts ReportAlerts

	for _, p := range products {
		if p.StockCoverageDays != nil && p.StockCoverageDays.LessThanOrEqual(*opts.LowStockThresholdDays) {
			entry := entryFor(p)
			entry.StockCoverageDays = p.StockCoverageDays
			entry.CurrentStockUnits = decimalPtr(p.CurrentStockUnits)
			alerts.LowStock = append(alerts.LowStock, entry)
		}
		if p.ReorderPoint != nil && p.CurrentStockUnits.LessThan(*p.ReorderPoint) {
			entry := entryFor(p)
			entry.ReorderPoint = p.ReorderPoint
			entry.CurrentStockUnits = decimalPtr(p.CurrentStockUnits)
			alerts.ReorderRecommended = append(alerts.ReorderRecommended, entry)
		}
		if p.TotalSoldUnits.IsZero() && p.CurrentStockUnits.IsPositive() {
			entry := entryFor(p)
			entry.CurrentStockUnits = decimalPtr(p.CurrentStockUnits)
			alerts.NoSales = append(alerts.NoSales, entry)
		}
		if p.TotalPurchasedUnits.IsZero() && p.CurrentStockUnits.IsPositive() {
			entry := entryFor(p)
			entry.CurrentStockUnits = decimalPtr(p.CurrentStockUnits)
			alerts.NoPurchases = append(alerts.NoPurchases, entry)
		}
		if p.StockCoverageDays != nil && p.StockCoverageDays.GreaterThanOrEqual(*opts.ExcessStockThresholdDays) {
			entry := entryFor(p)
			entry.StockCoverageDays = p.StockCoverageDays
			entry.CurrentStockUnits = decimalPtr(p.CurrentStockUnits)
			alerts.ExcessStock = append(alerts.ExcessStock, entry)
		}
		if (p.SalesVelocityPerDay == nil || p.SalesVelocityPerDay.IsZero()) && p.CurrentStockUnits.IsPositive() {
			entry := entryFor(p)
			entry.CurrentStockUnits = decimalPtr(p.CurrentStockUnits)
			alerts.StagnantStock = append(alerts.StagnantStock, entry)
		}
	}

	sort.SliceStable(alerts.LowStock, func(i, j int) bool {
		return alerts.LowStock[i].StockCoverageDays.LessThan(*alerts.LowStock[j].StockCoverageDays)
	})
	sort.SliceStable(alerts.ExcessStock, func(i, j int) bool {
		return alerts.ExcessStock[i].StockCoverageDays.GreaterThan(*alerts.ExcessStock[j].StockCoverageDays)
	})

	return alerts
}
