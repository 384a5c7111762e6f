// Package markethours は取引所の立会時間を判定します。
package markethours

import (
	"fmt"
	"time"
)

// NYSEの通常立会時間（現地時間）
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 16
	CloseMinute = 0
)

// Calendar はNYSEの立会セッションを判定します。
// 祝日カレンダーは持たず、曜日と時刻のみで判定します（将来の拡張候補）。
type Calendar struct {
	loc *time.Location
}

// NewCalendar はCalendarの新しいインスタンスを生成します。
// タイムゾーンデータベースが利用できない環境では東部標準時の固定オフセットにフォールバックします。
func NewCalendar() *Calendar {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*3600)
	}
	return &Calendar{loc: loc}
}

// IsOpen はtがNYSEの立会時間内（月〜金 9:30〜16:00 現地時間）かどうかを返します。
func (c *Calendar) IsOpen(t time.Time) bool {
	local := t.In(c.loc)
	if !c.IsWeekday(local) {
		return false
	}
	hm := local.Hour()*60 + local.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday はtが月〜金かどうかを返します。
func (c *Calendar) IsWeekday(t time.Time) bool {
	wd := t.In(c.loc).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// NextOpen は次の立会開始時刻を返します。
// tが当日の開始前であれば当日の開始時刻を返します。
func (c *Calendar) NextOpen(t time.Time) time.Time {
	local := t.In(c.loc)

	todayOpen := time.Date(local.Year(), local.Month(), local.Day(), OpenHour, OpenMinute, 0, 0, c.loc)
	if local.Before(todayOpen) && c.IsWeekday(local) {
		return todayOpen
	}

	d := local.AddDate(0, 0, 1)
	for i := 0; i < 7; i++ {
		if c.IsWeekday(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), OpenHour, OpenMinute, 0, 0, c.loc)
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(local.Year(), local.Month(), local.Day()+1, OpenHour, OpenMinute, 0, 0, c.loc)
}

// TodayClose は当日の立会終了時刻を返します。
func (c *Calendar) TodayClose(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), CloseHour, CloseMinute, 0, 0, c.loc)
}

// StatusString は稼働状況表示用の市場ステータス文字列を返します。
func (c *Calendar) StatusString(t time.Time) string {
	if c.IsOpen(t) {
		return fmt.Sprintf("open, closes %s", c.TodayClose(t).Format("15:04 MST"))
	}
	next := c.NextOpen(t)
	return fmt.Sprintf("closed, opens %s %s", next.Weekday().String()[:3], next.Format("15:04 MST"))
}
