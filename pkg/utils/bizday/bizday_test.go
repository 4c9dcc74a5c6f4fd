package bizday_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/utils/bizday"
)

func TestIterate(t *testing.T) {
	// Mon 2026-03-02 through Sun 2026-03-08: weekend excluded
	days := bizday.Iterate("2026-03-02", "2026-03-08")
	gt.Array(t, days).Length(5)
	gt.Value(t, days[0]).Equal(types.Date("2026-03-02"))
	gt.Value(t, days[4]).Equal(types.Date("2026-03-06"))

	// Weekend-only range has no business days
	gt.Array(t, bizday.Iterate("2026-03-07", "2026-03-08")).Length(0)

	gt.Number(t, bizday.Count("2026-03-02", "2026-03-15")).Equal(10)
}

func TestMondayOf(t *testing.T) {
	gt.Value(t, bizday.MondayOf("2026-03-02")).Equal(types.Date("2026-03-02")) // Monday itself
	gt.Value(t, bizday.MondayOf("2026-03-05")).Equal(types.Date("2026-03-02")) // Thursday
	gt.Value(t, bizday.MondayOf("2026-03-08")).Equal(types.Date("2026-03-02")) // Sunday
}

func TestNextBusinessDay(t *testing.T) {
	gt.Value(t, bizday.NextBusinessDay("2026-03-04")).Equal(types.Date("2026-03-04"))
	gt.Value(t, bizday.NextBusinessDay("2026-03-07")).Equal(types.Date("2026-03-09")) // Sat -> Mon
	gt.Value(t, bizday.NextBusinessDay("2026-03-08")).Equal(types.Date("2026-03-09")) // Sun -> Mon
}

func TestRangeFor(t *testing.T) {
	t.Run("daily rolls weekend anchor forward", func(t *testing.T) {
		start, end, err := bizday.RangeFor("2026-03-07", types.GranularityDaily)
		gt.NoError(t, err).Required()
		gt.Value(t, start).Equal(types.Date("2026-03-09"))
		gt.Value(t, end).Equal(types.Date("2026-03-09"))
	})

	t.Run("weekly spans Monday to Friday of anchor week", func(t *testing.T) {
		start, end, err := bizday.RangeFor("2026-03-05", types.GranularityWeekly)
		gt.NoError(t, err).Required()
		gt.Value(t, start).Equal(types.Date("2026-03-02"))
		gt.Value(t, end).Equal(types.Date("2026-03-06"))
	})

	t.Run("biweekly spans two weeks", func(t *testing.T) {
		start, end, err := bizday.RangeFor("2026-03-05", types.GranularityBiweekly)
		gt.NoError(t, err).Required()
		gt.Value(t, start).Equal(types.Date("2026-03-02"))
		gt.Value(t, end).Equal(types.Date("2026-03-13"))
	})

	t.Run("monthly spans the anchor's calendar month", func(t *testing.T) {
		start, end, err := bizday.RangeFor("2026-02-10", types.GranularityMonthly)
		gt.NoError(t, err).Required()
		gt.Value(t, start).Equal(types.Date("2026-02-01"))
		gt.Value(t, end).Equal(types.Date("2026-02-28"))
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		_, _, err := bizday.RangeFor("not-a-date", types.GranularityDaily)
		gt.Error(t, err)

		_, _, err = bizday.RangeFor("2026-03-02", types.Granularity("quarterly"))
		gt.Error(t, err)
	})
}
