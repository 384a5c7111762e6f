// Package entity はanalysisフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// Commentary kinds.
const (
	KindTechnical      = "technical"
	KindRecommendation = "recommendation"
)

// Commentary はAIが生成した銘柄解説を表します。キャッシュにはこの構造体が
// そのままJSONとして保存されます。
type Commentary struct {
	Symbol      string    `json:"symbol"`
	Kind        string    `json:"kind"`
	Text        string    `json:"text"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`

	// FromCache は読み出し経路を示すフラグで、保存対象には含めません。
	FromCache bool `json:"-"`
}
