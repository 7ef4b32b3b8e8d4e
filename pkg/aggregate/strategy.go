package aggregate

// Strategy selects and orders records for one kind of report. The aggregator
// composes a strategy rather than subclassing anything: the same ranking
// loop serves additions, cuts and purchase lists.
type Strategy interface {
	Name() string
	// Include decides whether a record belongs in this report at all.
	Include(r *CardRecord) bool
	// Less orders the report; sorts are stable, ties keep insertion order.
	Less(a, b *CardRecord) bool
}

// Recommend ranks cards not yet in the commander deck, strongest first.
// These are the addition candidates.
var Recommend Strategy = recommendStrategy{}

type recommendStrategy struct{}

func (recommendStrategy) Name() string { return "recommend" }

func (recommendStrategy) Include(r *CardRecord) bool {
	return !r.IsCommander
}

func (recommendStrategy) Less(a, b *CardRecord) bool {
	return a.WeightedPercent > b.WeightedPercent
}

// Trim ranks cards already in the commander deck, weakest first. These are
// the removal candidates.
var Trim Strategy = trimStrategy{}

type trimStrategy struct{}

func (trimStrategy) Name() string { return "trim" }

func (trimStrategy) Include(r *CardRecord) bool {
	return r.IsCommander
}

func (trimStrategy) Less(a, b *CardRecord) bool {
	return a.WeightedPercent < b.WeightedPercent
}

// Purchase ranks unowned addition candidates, strongest first. This feeds
// the buy list.
var Purchase Strategy = purchaseStrategy{}

type purchaseStrategy struct{}

func (purchaseStrategy) Name() string { return "purchase" }

func (purchaseStrategy) Include(r *CardRecord) bool {
	return !r.IsCommander && r.InventoryAmount == 0
}

func (purchaseStrategy) Less(a, b *CardRecord) bool {
	return a.WeightedPercent > b.WeightedPercent
}
