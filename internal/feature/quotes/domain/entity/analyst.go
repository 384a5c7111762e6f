package entity

// AnalystTargets carries the analyst price-target consensus for a symbol.
// Fields the provider did not report stay nil and serialize as null.
type AnalystTargets struct {
	Mean    *float64 `json:"mean"`
	High    *float64 `json:"high"`
	Low     *float64 `json:"low"`
	Current *float64 `json:"current"`
}

// Empty reports whether no target at all was provided.
func (a *AnalystTargets) Empty() bool {
	return a == nil || (a.Mean == nil && a.High == nil && a.Low == nil && a.Current == nil)
}
